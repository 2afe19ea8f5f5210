package repo

import (
	"context"
	"fmt"
	"time"

	"leadawaker/internal/models"
)

var pipelineColors = map[string]string{
	"New":         "#8884d8",
	"Contacted":   "#aabbcc",
	"Responded":   "#82ca9d",
	"Qualified":   "#ffc658",
	"Booked":      "#00c49f",
	"Call Booked": "#00c49f",
	"Lost":        "#ff0000",
	"DND":         "#6b7280",
}

// DashboardStats counts for one account, or every account when accountID is 0.
func (s *Store) DashboardStats(ctx context.Context, accountID int) (models.DashboardStats, error) {
	var stats models.DashboardStats
	scope, args := accountScope(accountID)
	today := time.Now().UTC().Format("2006-01-02")

	queries := []struct {
		dest  *int
		query string
		extra []any
	}{
		{&stats.TotalLeads, "SELECT COUNT(*) FROM leads WHERE 1=1" + scope, nil},
		{&stats.ActiveCampaigns, "SELECT COUNT(*) FROM campaigns WHERE status = ?" + scope, []any{models.CampaignStatusActive}},
		{&stats.BookedCalls, "SELECT COUNT(*) FROM leads WHERE LOWER(conversion_status) IN ('booked', 'call booked')" + scope, nil},
		{&stats.TakeoverLeads, "SELECT COUNT(*) FROM leads WHERE manual_takeover = ?" + scope, []any{true}},
		{&stats.MessagesToday, "SELECT COUNT(*) FROM interactions WHERE created_at >= ?" + scope, []any{today}},
		{&stats.DNDLeads, "SELECT COUNT(*) FROM leads WHERE automation_status = ?" + scope, []any{models.AutomationDND}},
	}
	for _, q := range queries {
		if err := s.get(ctx, q.dest, q.query, append(q.extra, args...)...); err != nil {
			return models.DashboardStats{}, fmt.Errorf("dashboard stats: %w", err)
		}
	}
	return stats, nil
}

// Pipeline groups leads by conversion status.
func (s *Store) Pipeline(ctx context.Context, accountID int) ([]models.PipelineStage, error) {
	scope, args := accountScope(accountID)
	stages := []models.PipelineStage{}
	err := s.selectAll(ctx, &stages, `SELECT conversion_status AS stage, COUNT(*) AS count
		FROM leads WHERE 1=1`+scope+` GROUP BY conversion_status ORDER BY count DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	for i := range stages {
		stages[i].Color = pipelineColors[stages[i].Stage]
		if stages[i].Color == "" {
			stages[i].Color = "#999999"
		}
	}
	return stages, nil
}

func accountScope(accountID int) (string, []any) {
	if accountID > 0 {
		return " AND account_id = ?", []any{accountID}
	}
	return "", nil
}
