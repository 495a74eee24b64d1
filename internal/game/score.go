// internal/game/score.go
//
// Scoring model.
//   - Each found word is worth a fixed number of points per tier.
//   - Finishing inside the time budget adds one point per second left.
//   - Rate maps a finished run onto the 1–5 star completion rating.

package game

// TimeBudgetSeconds is the window in which a time bonus is still earned.
const TimeBudgetSeconds = 300

// PointsForWord returns the tiered value of one found word.
func PointsForWord(d Difficulty) int {
	switch d {
	case Intermediate:
		return 15
	case Advanced:
		return 20
	default:
		return 10
	}
}

// TimeBonus returns max(0, TimeBudgetSeconds - elapsed).
func TimeBonus(elapsedSeconds int) int {
	return max(0, TimeBudgetSeconds-elapsedSeconds)
}

// FinalScore combines word points and the time bonus.
func FinalScore(wordsFound int, d Difficulty, elapsedSeconds int) int {
	return wordsFound*PointsForWord(d) + TimeBonus(elapsedSeconds)
}

// Rating is the star summary shown on the completion screen.
type Rating struct {
	Stars   int    `json:"stars"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Rate grades a run by completion rate and remaining time bonus.
// A run with nothing to find counts as complete.
func Rate(found, total, elapsedSeconds int) Rating {
	complete := found >= total
	bonus := TimeBonus(elapsedSeconds)
	switch {
	case complete && bonus > 180:
		return Rating{5, "Excellent!", "Outstanding performance! You're a word search master!"}
	case complete && bonus > 60:
		return Rating{4, "Great Job!", "Well done! You found all words efficiently."}
	case complete:
		return Rating{3, "Good Work!", "Nice! You found all the words."}
	case total > 0 && found*100 >= total*80:
		return Rating{2, "Not Bad!", "Good effort! Try to find more words next time."}
	}
	return Rating{1, "Keep Trying!", "Practice makes perfect! Don't give up!"}
}
