package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/toolshed/internal/model"
)

// SaveCheckoutDeclaration stores the borrower declaration for a reservation,
// replacing an earlier one.
func SaveCheckoutDeclaration(ctx context.Context, db *sql.DB, d model.CheckoutDeclaration) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO checkout_declarations
		     (reservation_id, tool_id, full_name, address, phone, expected_return_date)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (reservation_id) DO UPDATE SET
		     tool_id = excluded.tool_id,
		     full_name = excluded.full_name,
		     address = excluded.address,
		     phone = excluded.phone,
		     expected_return_date = excluded.expected_return_date,
		     declared_at = CURRENT_TIMESTAMP`,
		d.ReservationID, d.ToolID, d.FullName, d.Address, d.Phone, d.ExpectedReturnDate,
	)
	if err != nil {
		return fmt.Errorf("saving checkout declaration: %w", err)
	}
	return nil
}

// GetCheckoutDeclaration returns the declaration for a reservation, or nil.
func GetCheckoutDeclaration(ctx context.Context, db *sql.DB, reservationID int64) (*model.CheckoutDeclaration, error) {
	d := &model.CheckoutDeclaration{AgreedToTerms: true}
	err := db.QueryRowContext(ctx,
		`SELECT reservation_id, tool_id, full_name, address, phone, expected_return_date, declared_at
		 FROM checkout_declarations WHERE reservation_id = ?`, reservationID,
	).Scan(&d.ReservationID, &d.ToolID, &d.FullName, &d.Address, &d.Phone, &d.ExpectedReturnDate, &d.DeclaredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting checkout declaration: %w", err)
	}
	return d, nil
}

// DeleteCheckoutDeclaration removes the declaration once its reservation
// has been returned.
func DeleteCheckoutDeclaration(ctx context.Context, db *sql.DB, reservationID int64) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM checkout_declarations WHERE reservation_id = ?`, reservationID,
	)
	if err != nil {
		return fmt.Errorf("deleting checkout declaration: %w", err)
	}
	return nil
}
