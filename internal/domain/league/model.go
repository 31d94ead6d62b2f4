package league

import "fmt"

// League is a competition listed by the upstream esports feed.
type League struct {
	ID       string
	Slug     string
	Name     string
	Image    string
	Region   string
	Priority int
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	return nil
}
