package postgres

import (
	"context"
	"fmt"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/service/campaign"
)

func (t *txn) UpsertAssignment(ctx context.Context, campaignID, userID, tenantID string) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO campaign_assignments (campaign_id, user_id, tenant_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (campaign_id, user_id) DO NOTHING
	`, campaignID, userID, tenantID)
	if err != nil {
		return false, mapErr("upsert assignment", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (t *txn) SetLeadsAssigned(ctx context.Context, campaignID, userID string, count int) error {
	return t.updateCounter(ctx, "set leads assigned", `
		UPDATE campaign_assignments SET leads_assigned = $3
		WHERE campaign_id = $1 AND user_id = $2
	`, campaignID, userID, count)
}

func (t *txn) IncrementLeadsAssigned(ctx context.Context, campaignID, userID string, delta int) error {
	return t.updateCounter(ctx, "increment leads assigned", `
		UPDATE campaign_assignments SET leads_assigned = leads_assigned + $3
		WHERE campaign_id = $1 AND user_id = $2
	`, campaignID, userID, delta)
}

func (t *txn) updateCounter(ctx context.Context, op, q, campaignID, userID string, v int) error {
	res, err := t.tx.ExecContext(ctx, q, campaignID, userID, v)
	if err != nil {
		return mapErr(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w: %s", op, campaign.ErrUserNotAssigned, userID)
	}
	return nil
}

func (t *txn) DeleteAssignment(ctx context.Context, campaignID, userID string) error {
	res, err := t.tx.ExecContext(ctx, `
		DELETE FROM campaign_assignments WHERE campaign_id = $1 AND user_id = $2
	`, campaignID, userID)
	if err != nil {
		return mapErr("delete assignment", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete assignment: %w: %s", campaign.ErrUserNotAssigned, userID)
	}
	return nil
}

func (t *txn) DeleteAssignments(ctx context.Context, campaignID string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM campaign_assignments WHERE campaign_id = $1`, campaignID); err != nil {
		return mapErr("delete assignments", err)
	}
	return nil
}

// ListAssignments orders by the serial id, which follows insertion order even
// for rows created in the same transaction.
func (t *txn) ListAssignments(ctx context.Context, campaignID string) ([]domain.CampaignAssignment, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT campaign_id, user_id, tenant_id, leads_assigned, calls_made, meetings_scheduled, created_at
		FROM campaign_assignments
		WHERE campaign_id = $1
		ORDER BY id
	`, campaignID)
	if err != nil {
		return nil, mapErr("list assignments", err)
	}
	defer rows.Close()

	var out []domain.CampaignAssignment
	for rows.Next() {
		var a domain.CampaignAssignment
		if err := rows.Scan(&a.CampaignID, &a.UserID, &a.TenantID,
			&a.LeadsAssigned, &a.CallsMade, &a.MeetingsScheduled, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list assignments", err)
	}
	return out, nil
}
