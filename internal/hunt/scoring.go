package hunt

import "sort"

// ScoredSubmission is a Submission with per-field correctness and the 0-3
// score derived from the answer key.
type ScoredSubmission struct {
	Submission
	RealWorldCorrect bool
	VillainCorrect   bool
	WeaponCorrect    bool
	Score            int
	IsWinner         bool
}

// Result is the evaluated view over all final submissions.
type Result struct {
	Submissions       []ScoredSubmission
	Winners           []ScoredSubmission
	HasCorrectAnswers bool
}

// Evaluate scores every submission against the answer key. It is a pure
// function and is re-run on every query: the operator may change the key
// after submissions exist, so correctness is never cached.
//
// If the key is incomplete, scoring is disabled: no field is marked correct
// and there are no winners, regardless of submission content. Winners are the
// submissions scoring 3/3, ordered by submission time ascending with the
// submission ID as a stable tiebreak.
func Evaluate(subs []Submission, key AnswerKey) Result {
	res := Result{
		Submissions: make([]ScoredSubmission, 0, len(subs)),
		Winners:     []ScoredSubmission{},
	}
	res.HasCorrectAnswers = key.Set()

	for _, sub := range subs {
		scored := ScoredSubmission{Submission: sub}
		if res.HasCorrectAnswers {
			scored.RealWorldCorrect = normalize(sub.RealWorld) == normalize(key.RealWorld)
			scored.VillainCorrect = normalize(sub.Villain) == normalize(key.Villain)
			scored.WeaponCorrect = normalize(sub.Weapon) == normalize(key.Weapon)
			for _, ok := range []bool{scored.RealWorldCorrect, scored.VillainCorrect, scored.WeaponCorrect} {
				if ok {
					scored.Score++
				}
			}
			scored.IsWinner = scored.Score == 3
		}
		res.Submissions = append(res.Submissions, scored)
		if scored.IsWinner {
			res.Winners = append(res.Winners, scored)
		}
	}

	sort.SliceStable(res.Winners, func(i, j int) bool {
		a, b := res.Winners[i], res.Winners[j]
		if a.SubmittedAt != b.SubmittedAt {
			return a.SubmittedAt < b.SubmittedAt
		}
		return a.ID < b.ID
	})

	return res
}
