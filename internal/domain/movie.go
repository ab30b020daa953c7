package domain

// Mood values accepted by the movie command.
const (
	MoodHappy      = "happy"
	MoodSad        = "sad"
	MoodExcited    = "excited"
	MoodScared     = "scared"
	MoodThoughtful = "thoughtful"
	MoodRandom     = "random"
)

// TMDB genre identifiers used by the mood table.
const (
	GenreAction    = 28
	GenreAdventure = 12
	GenreComedy    = 35
	GenreDrama     = 18
	GenreFamily    = 10751
	GenreHorror    = 27
	GenreMusic     = 10402
	GenreMystery   = 9648
)

var moodGenres = map[string][]int{
	MoodHappy:      {GenreComedy, GenreMusic},
	MoodSad:        {GenreDrama, GenreFamily},
	MoodExcited:    {GenreAction, GenreAdventure},
	MoodScared:     {GenreHorror},
	MoodThoughtful: {GenreMystery, GenreDrama},
}

// Moods lists the accepted mood values in display order.
var Moods = []string{MoodHappy, MoodSad, MoodExcited, MoodScared, MoodThoughtful, MoodRandom}

// GenresForMood returns the genre filter for mood. Random and unknown moods
// return nil, meaning no filter. The returned slice is a copy.
func GenresForMood(mood string) []int {
	ids := moodGenres[mood]
	if len(ids) == 0 {
		return nil
	}
	return append([]int(nil), ids...)
}

// DiscoverQuery describes one movie discovery request.
type DiscoverQuery struct {
	Page     int
	GenreIDs []int // OR-combined; empty means unfiltered
}

// MovieSummary is one discovery result.
type MovieSummary struct {
	ID          int64
	Title       string
	ReleaseDate string
	Overview    string
	PosterPath  string
	VoteAverage float64
}

// MovieDetails holds the fields fetched by identifier.
type MovieDetails struct {
	Runtime int // minutes; 0 when unknown
	Genres  []string
}

// MovieRecommendation is the assembled recommendation shown to the user.
type MovieRecommendation struct {
	Title       string
	ReleaseYear string
	Rating      float64
	Runtime     int
	Genres      []string
	PosterURL   string
	Overview    string
}
