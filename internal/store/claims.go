package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/founditapp/foundit/internal/model"
)

const claimColumns = `id, item_id, item_title, claimer_id, claimer_name, claimer_email,
	claimer_phone, proof_image_url, description, status, created_at, updated_at`

// CreateClaim creates a new pending claim against an item.
func CreateClaim(ctx context.Context, db *sql.DB, claim *model.Claim) (*model.Claim, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO claims (id, item_id, item_title, claimer_id, claimer_name, claimer_email,
		                     claimer_phone, proof_image_url, description, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending')`,
		id, claim.ItemID, claim.ItemTitle, claim.ClaimerID, claim.ClaimerName,
		claim.ClaimerEmail, claim.ClaimerPhone, claim.ProofImageURL, claim.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("creating claim: %w", err)
	}

	return GetClaim(ctx, db, id)
}

func scanClaim(row interface{ Scan(...any) error }) (*model.Claim, error) {
	c := &model.Claim{}
	var phone, proof, description sql.NullString
	err := row.Scan(&c.ID, &c.ItemID, &c.ItemTitle, &c.ClaimerID, &c.ClaimerName,
		&c.ClaimerEmail, &phone, &proof, &description, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ClaimerPhone = phone.String
	c.ProofImageURL = proof.String
	c.Description = description.String
	return c, nil
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db *sql.DB, id string) (*model.Claim, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE id = ?`, id,
	)
	claim, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return claim, nil
}

// ListClaimsForItem returns all claims against one item, newest first.
func ListClaimsForItem(ctx context.Context, db *sql.DB, itemID string) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claims WHERE item_id = ? ORDER BY created_at DESC, rowid DESC`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims for item: %w", err)
	}
	defer rows.Close()
	return collectClaims(rows)
}

// ListClaimsForUser returns claims the user is a party to: claims they
// submitted, plus claims against items they reported.
func ListClaimsForUser(ctx context.Context, db *sql.DB, email string) ([]model.Claim, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM claims
		 WHERE claimer_email = ?
		    OR item_id IN (SELECT id FROM items WHERE reporter_email = ?)
		 ORDER BY created_at DESC, rowid DESC`, email, email,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims for user: %w", err)
	}
	defer rows.Close()
	return collectClaims(rows)
}

func collectClaims(rows *sql.Rows) ([]model.Claim, error) {
	var claims []model.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *claim)
	}
	return claims, rows.Err()
}

// transitionClaim moves a claim from one status to another with a guarded
// UPDATE. If the claim is not currently in the expected status the update
// affects zero rows, nothing changes, and ErrInvalidTransition is returned.
// Concurrent conflicting transitions resolve the same way: exactly one wins.
func transitionClaim(ctx context.Context, tx *sql.Tx, id, from, to string) error {
	if !model.CanTransitionClaim(from, to) {
		return model.ErrInvalidTransition
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("transitioning claim: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking claim transition: %w", err)
	}
	if affected == 0 {
		return model.ErrInvalidTransition
	}
	return nil
}

// AcceptClaim moves a pending claim to accepted and marks the item accepted.
// Returns ErrInvalidTransition if the claim is not pending.
func AcceptClaim(ctx context.Context, db *sql.DB, id string) error {
	return inClaimTx(ctx, db, func(tx *sql.Tx, claim *model.Claim) error {
		if err := transitionClaim(ctx, tx, id, model.ClaimStatusPending, model.ClaimStatusAccepted); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE items SET status = 'accepted', updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = 'pending'`, claim.ItemID,
		)
		if err != nil {
			return fmt.Errorf("marking item accepted: %w", err)
		}
		return nil
	}, id)
}

// RejectClaim moves a pending claim to rejected.
// Returns ErrInvalidTransition if the claim is not pending.
func RejectClaim(ctx context.Context, db *sql.DB, id string) error {
	return inClaimTx(ctx, db, func(tx *sql.Tx, claim *model.Claim) error {
		return transitionClaim(ctx, tx, id, model.ClaimStatusPending, model.ClaimStatusRejected)
	}, id)
}

// MarkClaimDone moves an accepted claim to done and completes the linked
// item in the same transaction. Returns ErrInvalidTransition if the claim
// is not accepted.
func MarkClaimDone(ctx context.Context, db *sql.DB, id string) error {
	return inClaimTx(ctx, db, func(tx *sql.Tx, claim *model.Claim) error {
		if err := transitionClaim(ctx, tx, id, model.ClaimStatusAccepted, model.ClaimStatusDone); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE items SET status = 'completed', updated_at = CURRENT_TIMESTAMP
			 WHERE id = ?`, claim.ItemID,
		)
		if err != nil {
			return fmt.Errorf("completing item: %w", err)
		}
		return nil
	}, id)
}

// inClaimTx loads the claim and runs fn inside a transaction, rolling back
// on any error so failed transitions leave no partial state.
func inClaimTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx, *model.Claim) error, id string) error {
	claim, err := GetClaim(ctx, db, id)
	if err != nil {
		return err
	}
	if claim == nil {
		return model.ErrInvalidTransition
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx, claim); err != nil {
		return err
	}
	return tx.Commit()
}
