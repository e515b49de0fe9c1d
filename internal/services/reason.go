package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arlenwu/teamforge/pkg/models"
)

const (
	reasonTopSkills = 3
	// reasonNone is the default reason when nothing overlaps, the target has
	// no skill requirements, or a lookup fails.
	reasonNone = "Matched: none"
)

type matchedSkill struct {
	skillID    int64
	name       string
	level      int
	importance int
}

func (m matchedSkill) weight() int { return m.level * m.importance }

// BuildCompetitionRecommendReason renders a human-readable line naming the
// user's strongest overlaps with the competition's requirements, for example
// "Matched: Java(4x5), SQL(3x4)". When nothing overlaps or a lookup fails
// the line reads "Matched: none".
func (s *RecommendationService) BuildCompetitionRecommendReason(ctx context.Context, userID, competitionID int64) string {
	required, err := s.store.ListRequiredSkills(ctx, competitionID)
	if err != nil {
		s.logger.WithError(err).WithField("competition_id", competitionID).Warn("reason lookup failed")
		return reasonNone
	}
	return s.buildReason(ctx, userID, required)
}

// BuildTeamRecommendReason is the team counterpart, matching the user's
// skills against the skills the team declares it is recruiting for.
func (s *RecommendationService) BuildTeamRecommendReason(ctx context.Context, userID, teamID int64) string {
	wanted, err := s.store.ListTeamSkills(ctx, teamID)
	if err != nil {
		s.logger.WithError(err).WithField("team_id", teamID).Warn("reason lookup failed")
		return reasonNone
	}
	return s.buildReason(ctx, userID, wanted)
}

func (s *RecommendationService) buildReason(ctx context.Context, userID int64, wanted []models.SkillAssignment) string {
	if len(wanted) == 0 {
		return reasonNone
	}

	assignments, err := s.store.ListUserSkills(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("reason lookup failed")
		return reasonNone
	}

	levels := make(map[int64]int, len(assignments))
	for _, a := range assignments {
		if a.Strength > levels[a.SkillID] {
			levels[a.SkillID] = a.Strength
		}
	}

	matched := make([]matchedSkill, 0, len(wanted))
	for _, w := range wanted {
		level, ok := levels[w.SkillID]
		if !ok || level == 0 {
			continue
		}
		matched = append(matched, matchedSkill{
			skillID:    w.SkillID,
			name:       w.Name,
			level:      level,
			importance: w.Strength,
		})
	}
	if len(matched) == 0 {
		return reasonNone
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].weight() != matched[j].weight() {
			return matched[i].weight() > matched[j].weight()
		}
		return matched[i].skillID < matched[j].skillID
	})
	if len(matched) > reasonTopSkills {
		matched = matched[:reasonTopSkills]
	}

	parts := make([]string, len(matched))
	for i, m := range matched {
		parts[i] = fmt.Sprintf("%s(%dx%d)", m.name, m.level, m.importance)
	}

	return s.truncateReason("Matched: " + strings.Join(parts, ", "))
}

// truncateReason caps the reason for list rendering. The cut happens on
// runes so a multibyte skill name never gets split mid-character.
func (s *RecommendationService) truncateReason(reason string) string {
	max := s.config.ReasonMaxLength
	runes := []rune(reason)
	if len(runes) <= max {
		return reason
	}
	return string(runes[:max-3]) + "..."
}
