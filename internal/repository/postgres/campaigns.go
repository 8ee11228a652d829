package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

const campaignColumns = `id, tenant_id, name, database_id, status, created_at, updated_at`

// scanCampaign reads campaignColumns followed by any extra destinations.
func scanCampaign(row interface{ Scan(...any) error }, extra ...any) (*domain.Campaign, error) {
	var (
		c      domain.Campaign
		dbID   sql.NullString
		status string
	)
	dest := append([]any{&c.ID, &c.TenantID, &c.Name, &dbID, &status, &c.CreatedAt, &c.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.DatabaseID = nullable(dbID)
	c.Status = domain.CampaignStatus(status)
	if !c.Status.Valid() {
		return nil, fmt.Errorf("campaign %s: unknown status %q", c.ID, status)
	}
	return &c, nil
}

func (t *txn) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO campaigns (id, tenant_id, name, database_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`, c.ID, c.TenantID, c.Name, c.DatabaseID, string(c.Status)).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return mapErr("create campaign", err)
	}
	return nil
}

func (t *txn) GetCampaign(ctx context.Context, tenantID, id string) (*domain.Campaign, error) {
	return t.getCampaign(ctx, tenantID, id, "")
}

func (t *txn) LockCampaign(ctx context.Context, tenantID, id string) (*domain.Campaign, error) {
	return t.getCampaign(ctx, tenantID, id, " FOR UPDATE")
}

func (t *txn) getCampaign(ctx context.Context, tenantID, id, suffix string) (*domain.Campaign, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE id = $1 AND tenant_id = $2`+suffix, id, tenantID)
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", campaign.ErrNotFound, id)
	}
	if err != nil {
		return nil, mapErr("get campaign", err)
	}
	return c, nil
}

func (t *txn) UpdateCampaignStatus(ctx context.Context, id string, status domain.CampaignStatus) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE campaigns SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, string(status), id)
	if err != nil {
		return mapErr("update campaign status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", campaign.ErrNotFound, id)
	}
	return nil
}

func (t *txn) DeleteCampaign(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return mapErr("delete campaign", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", campaign.ErrNotFound, id)
	}
	return nil
}

func (t *txn) ListCampaigns(ctx context.Context, status domain.CampaignStatus) ([]domain.Campaign, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE status = $1
		ORDER BY created_at, id
	`, string(status))
	if err != nil {
		return nil, mapErr("list campaigns", err)
	}
	defer rows.Close()

	var out []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (t *txn) SummarizeCampaigns(ctx context.Context, tenantID string) ([]domain.CampaignSummary, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT c.id, c.tenant_id, c.name, c.database_id, c.status, c.created_at, c.updated_at,
			COUNT(ca.user_id),
			COALESCE(SUM(ca.leads_assigned), 0),
			COALESCE(SUM(ca.calls_made), 0),
			COALESCE(SUM(ca.meetings_scheduled), 0)
		FROM campaigns c
		LEFT JOIN campaign_assignments ca ON ca.campaign_id = c.id
		WHERE c.tenant_id = $1
		GROUP BY c.id
		ORDER BY c.created_at DESC, c.id
	`, tenantID)
	if err != nil {
		return nil, mapErr("summarize campaigns", err)
	}
	defer rows.Close()

	var out []domain.CampaignSummary
	for rows.Next() {
		var s domain.CampaignSummary
		c, err := scanCampaign(rows, &s.Users, &s.LeadsAssigned, &s.CallsMade, &s.MeetingsScheduled)
		if err != nil {
			return nil, fmt.Errorf("scan campaign summary: %w", err)
		}
		s.Campaign = *c
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("summarize campaigns", err)
	}
	return out, nil
}

func (t *txn) UserExists(ctx context.Context, tenantID, userID string) (bool, error) {
	var ok bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1 AND tenant_id = $2)
	`, userID, tenantID).Scan(&ok)
	if err != nil {
		return false, mapErr("lookup user", err)
	}
	return ok, nil
}
