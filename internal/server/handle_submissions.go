package server

import (
	"log/slog"
	"net/http"

	"github.com/questworks/worldhunt/internal/hunt"
)

// ScoredSubmissionItem is one evaluated submission in the operator view.
type ScoredSubmissionItem struct {
	ID               string `json:"id"`
	TeamID           string `json:"teamId"`
	TeamName         string `json:"teamName"`
	RealWorld        string `json:"realWorld"`
	Villain          string `json:"villain"`
	Weapon           string `json:"weapon"`
	SubmittedAt      string `json:"submittedAt"`
	RealWorldCorrect bool   `json:"realWorldCorrect"`
	VillainCorrect   bool   `json:"villainCorrect"`
	WeaponCorrect    bool   `json:"weaponCorrect"`
	Score            int    `json:"score"`
	IsWinner         bool   `json:"isWinner"`
}

// SubmissionsResponse is the full evaluated submission list plus the ordered
// winner set.
type SubmissionsResponse struct {
	Submissions       []ScoredSubmissionItem `json:"submissions"`
	Winners           []ScoredSubmissionItem `json:"winners"`
	TotalSubmissions  int                    `json:"totalSubmissions"`
	HasCorrectAnswers bool                   `json:"hasCorrectAnswers"`
}

func scoredItem(s hunt.ScoredSubmission) ScoredSubmissionItem {
	return ScoredSubmissionItem{
		ID:               s.ID,
		TeamID:           s.TeamID,
		TeamName:         s.TeamName,
		RealWorld:        s.RealWorld,
		Villain:          s.Villain,
		Weapon:           s.Weapon,
		SubmittedAt:      s.SubmittedAt,
		RealWorldCorrect: s.RealWorldCorrect,
		VillainCorrect:   s.VillainCorrect,
		WeaponCorrect:    s.WeaponCorrect,
		Score:            s.Score,
		IsWinner:         s.IsWinner,
	}
}

// handleListSubmissions evaluates every submission against the current
// answer key on each call. Nothing is cached: the operator may change the
// key after submissions exist.
func handleListSubmissions(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subs, err := store.ListFinalSubmissions(r.Context())
		if err != nil {
			logger.Error("listing final submissions", "error", err)
			writeInternal(w)
			return
		}
		control, err := store.EventControl(r.Context())
		if err != nil {
			logger.Error("loading event control", "error", err)
			writeInternal(w)
			return
		}

		result := hunt.Evaluate(subs, control.Key)

		resp := SubmissionsResponse{
			Submissions:       make([]ScoredSubmissionItem, 0, len(result.Submissions)),
			Winners:           make([]ScoredSubmissionItem, 0, len(result.Winners)),
			TotalSubmissions:  len(result.Submissions),
			HasCorrectAnswers: result.HasCorrectAnswers,
		}
		for _, s := range result.Submissions {
			resp.Submissions = append(resp.Submissions, scoredItem(s))
		}
		for _, s := range result.Winners {
			resp.Winners = append(resp.Winners, scoredItem(s))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
