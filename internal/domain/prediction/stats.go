package prediction

// Stats summarises a user's prediction accuracy. Accuracies are percentages
// and are 0 when nothing has been scored yet.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	WinnerCorrect  int
	WinnerAccuracy float64
	ScoreCorrect   int
	ScoreAccuracy  float64
	TotalPoints    int
}

func ComputeStats(items []Prediction) Stats {
	s := Stats{Total: len(items)}
	for _, p := range items {
		if p.Result == nil {
			continue
		}
		s.Completed++
		s.TotalPoints += p.Result.PointsEarned
		if p.Result.WinnerCorrect {
			s.WinnerCorrect++
		}
		if p.Result.ScoreCorrect {
			s.ScoreCorrect++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Completed > 0 {
		s.WinnerAccuracy = float64(s.WinnerCorrect) / float64(s.Completed) * 100
		s.ScoreAccuracy = float64(s.ScoreCorrect) / float64(s.Completed) * 100
	}
	return s
}
