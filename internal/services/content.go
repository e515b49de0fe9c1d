package services

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/arlenwu/teamforge/internal/config"
)

// ContentScorer rates user/competition fit and team complementarity from
// skill vectors alone, independent of behavior history.
type ContentScorer struct {
	config *config.RecommendationConfig
	logger *logrus.Logger
}

func NewContentScorer(cfg *config.RecommendationConfig, logger *logrus.Logger) *ContentScorer {
	return &ContentScorer{
		config: cfg,
		logger: logger,
	}
}

// CompetitionFit scores how well a user's skills cover a competition's
// requirements. Competitions that declare no requirements score 0.0 for
// everyone.
func (s *ContentScorer) CompetitionFit(userSkills, requiredSkills Vector) float64 {
	if len(requiredSkills) == 0 {
		return 0.0
	}
	return CosineSimilarity(userSkills, requiredSkills)
}

// TeamComplementarity rewards a candidate for required skills the team
// lacks, not skills the team already covers. For each required skill the
// candidate outclasses the team on, the level surplus contributes
// proportionally to the skill's importance; skills the team is missing
// entirely earn the gap bonus on top, so both terms stack when teamLevel
// is zero. The result is averaged over the requirement count and capped
// at 1.0.
func (s *ContentScorer) TeamComplementarity(teamSkills, userSkills, requiredSkills Vector) float64 {
	if len(requiredSkills) == 0 {
		return 0.0
	}

	score := 0.0
	for skillID, importance := range requiredSkills {
		teamLevel := teamSkills[skillID]
		userLevel := userSkills[skillID]

		if userLevel > teamLevel {
			score += (userLevel - teamLevel) * importance / 5.0
		}
		if teamLevel == 0 && userLevel > 0 {
			score += userLevel * importance / 5.0 * s.config.GapBonus
		}
	}

	return math.Min(score/float64(len(requiredSkills)), 1.0)
}
