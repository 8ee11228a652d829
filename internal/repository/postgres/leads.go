package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/domain"
)

const leadColumns = `id, tenant_id, database_id, campaign_id, assigned_to,
	COALESCE(company_name, ''), COALESCE(email, ''), COALESCE(phone, ''), created_at`

func (t *txn) queryLeads(ctx context.Context, op, q string, args ...any) ([]domain.Lead, error) {
	rows, err := t.tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var (
			l                         domain.Lead
			dbID, campaignID, ownerID sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.TenantID, &dbID, &campaignID, &ownerID,
			&l.CompanyName, &l.Email, &l.Phone, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		l.DatabaseID = nullable(dbID)
		l.CampaignID = nullable(campaignID)
		l.OwnerID = nullable(ownerID)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err)
	}
	return out, nil
}

func (t *txn) FetchLeadsByDatabase(ctx context.Context, databaseID, tenantID string) ([]domain.Lead, error) {
	return t.queryLeads(ctx, "fetch database leads", `
		SELECT `+leadColumns+`
		FROM leads
		WHERE database_id = $1 AND tenant_id = $2 AND campaign_id IS NULL
		ORDER BY created_at, id
		FOR UPDATE
	`, databaseID, tenantID)
}

func (t *txn) FetchLeadsOwnedBy(ctx context.Context, campaignID, userID string) ([]domain.Lead, error) {
	return t.queryLeads(ctx, "fetch owned leads", `
		SELECT `+leadColumns+`
		FROM leads
		WHERE campaign_id = $1 AND assigned_to = $2
		ORDER BY created_at, id
		FOR UPDATE
	`, campaignID, userID)
}

func (t *txn) FetchCampaignLeads(ctx context.Context, campaignID string) ([]domain.Lead, error) {
	return t.queryLeads(ctx, "fetch campaign leads", `
		SELECT `+leadColumns+`
		FROM leads
		WHERE campaign_id = $1
		ORDER BY created_at, id
	`, campaignID)
}

func (t *txn) CountLeadsOwnedBy(ctx context.Context, campaignID, userID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leads WHERE campaign_id = $1 AND assigned_to = $2
	`, campaignID, userID).Scan(&n)
	if err != nil {
		return 0, mapErr("count owned leads", err)
	}
	return n, nil
}

func (t *txn) ReassignLeadOwner(ctx context.Context, campaignID, leadID string, userID *string) error {
	return t.ReassignLeadOwners(ctx, campaignID, []string{leadID}, userID)
}

func (t *txn) ReassignLeadOwners(ctx context.Context, campaignID string, leadIDs []string, userID *string) error {
	if len(leadIDs) == 0 {
		return nil
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE leads SET campaign_id = $1, assigned_to = $2
		WHERE id = ANY($3)
	`, campaignID, userID, pq.Array(leadIDs))
	if err != nil {
		return mapErr("reassign leads", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapErr("reassign leads", err)
	}
	if int(n) != len(leadIDs) {
		return fmt.Errorf("reassign leads: %d of %d leads found", n, len(leadIDs))
	}
	return nil
}

func (t *txn) DetachCampaignLeads(ctx context.Context, campaignID string) (int, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE leads SET campaign_id = NULL, assigned_to = NULL
		WHERE campaign_id = $1
	`, campaignID)
	if err != nil {
		return 0, mapErr("detach campaign leads", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
