package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	joinSchema := compile("join.schema.json")
	leaveSchema := compile("leave.schema.json")
	broadcastSchema := compile("broadcast.schema.json")
	trackSchema := compile("track.schema.json")
	presenceSchema := compile("presence.schema.json")
	errorSchema := compile("error.schema.json")
	plotUpdateSchema := compile("plot_update.schema.json")

	var join any
	_ = json.Unmarshal([]byte(`{
	  "type":"JOIN",
	  "protocol_version":"1.0",
	  "topic":"farm:alice",
	  "key":"bob",
	  "self":false
	}`), &join)
	validate(joinSchema, join)

	var leave any
	_ = json.Unmarshal([]byte(`{
	  "type":"LEAVE",
	  "protocol_version":"1.0",
	  "topic":"farm:alice"
	}`), &leave)
	validate(leaveSchema, leave)

	var broadcast any
	_ = json.Unmarshal([]byte(`{
	  "type":"BROADCAST",
	  "protocol_version":"1.0",
	  "topic":"farm:alice",
	  "event":"plot_update",
	  "from":"alice",
	  "payload":{"plot_index":42,"terrain":"soil","status":"planted","seed_id":"seed_parsnip","days_growing":0,"watered":true}
	}`), &broadcast)
	validate(broadcastSchema, broadcast)

	var track any
	_ = json.Unmarshal([]byte(`{
	  "type":"TRACK",
	  "protocol_version":"1.0",
	  "topic":"farm:alice",
	  "state":{"id":"bob","name":"Bob","avatar":"avatar_2","x":12.5,"z":30,"facing":"down","anim":"idle"}
	}`), &track)
	validate(trackSchema, track)

	var presence any
	_ = json.Unmarshal([]byte(`{
	  "type":"PRESENCE",
	  "protocol_version":"1.0",
	  "topic":"farm:alice",
	  "members":[
	    {"key":"alice","state":{"id":"alice","name":"Alice","avatar":"avatar_1","x":64,"z":142,"facing":"up","anim":"walk"}},
	    {"key":"bob"}
	  ]
	}`), &presence)
	validate(presenceSchema, presence)

	var errMsg any
	_ = json.Unmarshal([]byte(`{
	  "type":"ERROR",
	  "protocol_version":"1.0",
	  "code":"E_NOT_MEMBER",
	  "message":"not joined to farm:alice"
	}`), &errMsg)
	validate(errorSchema, errMsg)

	var plot any
	_ = json.Unmarshal([]byte(`{
	  "plot_index":181,
	  "terrain":"grass",
	  "status":"",
	  "days_growing":0,
	  "watered":false,
	  "variant":2
	}`), &plot)
	validate(plotUpdateSchema, plot)
}
