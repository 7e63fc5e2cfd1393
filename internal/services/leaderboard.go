package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tastetrail/engagement-backend/internal/dto"
)

const (
	ScopeDaily   = "daily"
	ScopeWeekly  = "weekly"
	ScopeAllTime = "alltime"

	pointsPerCheckin = 10
)

// Leaderboard aggregates check-ins per user over the scope's window,
// optionally filtered to one city/country, ranked by points descending
// with most recent activity breaking ties.
func (s *ProgressService) Leaderboard(scope, country, city string, limit int) ([]dto.LeaderboardItem, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	now := time.Now().UTC()
	var since time.Time
	switch scope {
	case ScopeDaily:
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case ScopeWeekly:
		since = now.AddDate(0, 0, -7)
	default:
		// all-time is bounded to the trailing year
		since = now.AddDate(-1, 0, 0)
	}

	type row struct {
		UserID   uuid.UUID
		Checkins int64
		FirstDay interface{}
		LastDay  interface{}
	}

	q := s.db.Table("restaurant_stamps").
		Select("restaurant_stamps.user_id AS user_id, COUNT(*) AS checkins, MIN(restaurant_stamps.first_stamped_at) AS first_day, MAX(restaurant_stamps.first_stamped_at) AS last_day").
		Where("restaurant_stamps.first_stamped_at >= ?", since).
		Group("restaurant_stamps.user_id").
		Order("checkins DESC, last_day DESC").
		Limit(limit)

	if city != "" || country != "" {
		q = q.Joins("JOIN restaurants ON restaurants.id = restaurant_stamps.restaurant_id")
		if city != "" {
			q = q.Where("restaurants.city = ?", city)
		}
		if country != "" {
			q = q.Where("restaurants.country = ?", country)
		}
	}

	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate leaderboard: %w", err)
	}

	items := make([]dto.LeaderboardItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.LeaderboardItem{
			UserID:   r.UserID,
			Points:   r.Checkins * pointsPerCheckin,
			Checkins: r.Checkins,
			FirstDay: asDay(r.FirstDay),
			LastDay:  asDay(r.LastDay),
		})
	}
	return items, nil
}

// asDay normalizes an aggregated timestamp column to YYYY-MM-DD. The
// driver hands MIN/MAX values back as time.Time on Postgres but as raw
// text on SQLite, where aggregates lose the declared column type.
func asDay(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format("2006-01-02")
	case string:
		if len(t) >= 10 {
			return t[:10]
		}
		return t
	case []byte:
		s := string(t)
		if len(s) >= 10 {
			return s[:10]
		}
		return s
	default:
		return ""
	}
}
