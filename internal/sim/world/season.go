package world

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

var seasonOrder = [...]Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// SeasonForDay maps a 1-based day index to its season. Seasons repeat in
// fixed-length blocks starting with spring on day 1.
func SeasonForDay(day, daysPerSeason int) Season {
	if day < 1 {
		day = 1
	}
	if daysPerSeason <= 0 {
		daysPerSeason = 30
	}
	return seasonOrder[((day-1)/daysPerSeason)%len(seasonOrder)]
}
