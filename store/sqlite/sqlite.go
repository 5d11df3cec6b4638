/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Persists organizations, contracts, signatories, compliance requirements
  and items, rate cards, rate approvals, and the audit log. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect differences.

ORGANIZATION SCOPING:
  Every read and write is scoped by organization id. A row owned by another
  organization is reported as core.ErrNotFound; cross-tenant access is never
  valid.

OPTIMISTIC CONCURRENCY:
  Mutable rows (contracts, compliance items, rate approvals) carry a
  revision counter. Updates include the revision the caller read:

    UPDATE contracts SET ... , revision = revision + 1
    WHERE id = ? AND org_id = ? AND revision = ?

  Zero rows affected on an existing row means another operator saved first;
  the caller gets core.ErrConcurrentModification and must re-read.

AUDIT LOG:
  audit_log is append-only. No UPDATE or DELETE statements exist for it;
  every stored lifecycle status change records who and when.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

VALUE ENCODING:
  Money and percentages are stored as decimal strings, never floats.
  Timestamps are RFC3339 UTC; calendar dates (effective, expiry) are
  YYYY-MM-DD, which compare correctly as strings in SQL.

SEE ALSO:
  - contract, compliance, rate: the domain types persisted here
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/compliance"
	"github.com/warp/staffing-engine/contract"
	"github.com/warp/staffing-engine/core"
	"github.com/warp/staffing-engine/rate"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL REFERENCES organizations(id),
		contract_number TEXT NOT NULL,
		status TEXT NOT NULL,
		effective_date TEXT,
		expiry_date TEXT,
		contract_value TEXT,
		currency TEXT NOT NULL DEFAULT 'USD',
		renewal_notice_days INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 1,
		is_latest_version BOOLEAN NOT NULL DEFAULT TRUE,
		previous_version_id TEXT REFERENCES contracts(id),
		terminated_by TEXT,
		terminated_at TEXT,
		revision INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contracts_org
		ON contracts(org_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_org_number_version
		ON contracts(org_id, contract_number, version);
	CREATE INDEX IF NOT EXISTS idx_contracts_org_status
		ON contracts(org_id, status);
	-- Expiry sweeps scan by date (hot path for alert widgets)
	CREATE INDEX IF NOT EXISTS idx_contracts_org_expiry
		ON contracts(org_id, expiry_date) WHERE expiry_date IS NOT NULL;

	CREATE TABLE IF NOT EXISTS contract_signatories (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		name TEXT NOT NULL,
		email TEXT,
		role TEXT,
		required BOOLEAN NOT NULL DEFAULT TRUE,
		state TEXT NOT NULL DEFAULT 'pending',
		signed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_signatories_contract
		ON contract_signatories(contract_id);

	CREATE TABLE IF NOT EXISTS compliance_requirements (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL REFERENCES organizations(id),
		name TEXT NOT NULL,
		category TEXT,
		description TEXT,
		validity_days INTEGER NOT NULL DEFAULT 0,
		lookahead_days INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requirements_org
		ON compliance_requirements(org_id);

	CREATE TABLE IF NOT EXISTS compliance_items (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL REFERENCES organizations(id),
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		requirement_id TEXT REFERENCES compliance_requirements(id),
		status TEXT NOT NULL DEFAULT 'pending',
		effective_date TEXT,
		expiry_date TEXT,
		verified_at TEXT,
		verified_by TEXT,
		waived_at TEXT,
		waived_by TEXT,
		notes TEXT,
		revision INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_org_entity
		ON compliance_items(org_id, entity_type, entity_id);
	CREATE INDEX IF NOT EXISTS idx_items_org_status
		ON compliance_items(org_id, status);
	CREATE INDEX IF NOT EXISTS idx_items_org_expiry
		ON compliance_items(org_id, expiry_date) WHERE expiry_date IS NOT NULL;

	CREATE TABLE IF NOT EXISTS rate_cards (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL REFERENCES organizations(id),
		name TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		unit TEXT NOT NULL DEFAULT 'hourly',
		version INTEGER NOT NULL DEFAULT 1,
		is_latest_version BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rate_cards_org_name_version
		ON rate_cards(org_id, name, version);

	CREATE TABLE IF NOT EXISTS rate_card_items (
		id TEXT PRIMARY KEY,
		card_id TEXT NOT NULL REFERENCES rate_cards(id),
		job_category TEXT NOT NULL,
		job_level TEXT NOT NULL,
		min_pay_rate TEXT NOT NULL DEFAULT '0',
		max_pay_rate TEXT NOT NULL DEFAULT '0',
		target_pay_rate TEXT NOT NULL DEFAULT '0',
		min_bill_rate TEXT NOT NULL DEFAULT '0',
		max_bill_rate TEXT NOT NULL DEFAULT '0',
		target_bill_rate TEXT NOT NULL DEFAULT '0',
		min_margin_pct TEXT NOT NULL DEFAULT '0',
		target_margin_pct TEXT NOT NULL DEFAULT '0'
	);

	CREATE INDEX IF NOT EXISTS idx_rate_card_items_card
		ON rate_card_items(card_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_rate_card_items_key
		ON rate_card_items(card_id, job_category, job_level);

	CREATE TABLE IF NOT EXISTS rate_approvals (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL REFERENCES organizations(id),
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		bill_rate TEXT NOT NULL DEFAULT '0',
		pay_rate TEXT NOT NULL DEFAULT '0',
		unit TEXT NOT NULL DEFAULT 'hourly',
		currency TEXT NOT NULL DEFAULT 'USD',
		quote_effective_at TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		below_minimum BOOLEAN NOT NULL DEFAULT FALSE,
		requested_by TEXT NOT NULL,
		decided_by TEXT,
		decided_at TEXT,
		message TEXT,
		revision INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_approvals_org_status
		ON rate_approvals(org_id, status);
	CREATE INDEX IF NOT EXISTS idx_approvals_org_entity
		ON rate_approvals(org_id, entity_type, entity_id);

	-- Append-only: no UPDATE or DELETE on audit_log, ever
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		entity_kind TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		action TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		from_status TEXT,
		to_status TEXT,
		detail TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_org_entity
		ON audit_log(org_id, entity_kind, entity_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ORGANIZATIONS
// =============================================================================

func (s *Store) SaveOrganization(ctx context.Context, org core.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		org.ID, org.Name, formatTime(org.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save organization: %w", err)
	}
	return nil
}

func (s *Store) GetOrganization(ctx context.Context, id core.OrgID) (*core.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var org core.Organization
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`, id,
	).Scan(&org.ID, &org.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	org.CreatedAt = parseTime(createdAt)
	return &org, nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]core.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []core.Organization
	for rows.Next() {
		var org core.Organization
		var createdAt string
		if err := rows.Scan(&org.ID, &org.Name, &createdAt); err != nil {
			return nil, err
		}
		org.CreatedAt = parseTime(createdAt)
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// =============================================================================
// CONTRACTS
// =============================================================================

const contractColumns = `id, org_id, contract_number, status, effective_date, expiry_date,
	contract_value, currency, renewal_notice_days, version, is_latest_version,
	previous_version_id, terminated_by, terminated_at, revision, created_at, updated_at`

// CreateContract inserts a contract and its signatories atomically.
func (s *Store) CreateContract(ctx context.Context, c *contract.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO contracts (`+contractColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OrgID, c.ContractNumber, c.Status,
		nullDate(c.EffectiveDate), nullDate(c.ExpiryDate),
		nullDecimal(c.ContractValue), c.Currency, c.RenewalNoticeDays,
		c.Version, c.IsLatestVersion, nullContractID(c.PreviousVersionID),
		nullActor(c.TerminatedBy), nullTimePtr(c.TerminatedAt),
		c.Revision, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}

	if err := insertSignatories(ctx, sqlTx, c); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// UpdateContract persists a contract using the revision the caller read.
// Zero rows affected on an existing contract means another operator saved
// first and the caller gets core.ErrConcurrentModification.
func (s *Store) UpdateContract(ctx context.Context, c *contract.Contract, expectedRevision int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.ExecContext(ctx, `
		UPDATE contracts SET
			status = ?, effective_date = ?, expiry_date = ?, contract_value = ?,
			currency = ?, renewal_notice_days = ?, is_latest_version = ?,
			terminated_by = ?, terminated_at = ?,
			revision = revision + 1, updated_at = ?
		WHERE id = ? AND org_id = ? AND revision = ?`,
		c.Status, nullDate(c.EffectiveDate), nullDate(c.ExpiryDate),
		nullDecimal(c.ContractValue), c.Currency, c.RenewalNoticeDays,
		c.IsLatestVersion, nullActor(c.TerminatedBy), nullTimePtr(c.TerminatedAt),
		formatTime(c.UpdatedAt),
		c.ID, c.OrgID, expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.staleOrMissing(ctx, sqlTx, "contracts", string(c.ID), c.OrgID)
	}

	// Signatories are replaced wholesale; the lifecycle guards in the domain
	// layer already prevent removal of signed parties.
	if _, err := sqlTx.ExecContext(ctx,
		`DELETE FROM contract_signatories WHERE contract_id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to clear signatories: %w", err)
	}
	if err := insertSignatories(ctx, sqlTx, c); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return err
	}
	c.Revision = expectedRevision + 1
	return nil
}

func insertSignatories(ctx context.Context, tx *sql.Tx, c *contract.Contract) error {
	for _, sig := range c.Signatories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO contract_signatories (id, contract_id, name, email, role, required, state, signed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sig.ID, c.ID, sig.Name, sig.Email, sig.Role, sig.Required, sig.State,
			nullTimePtr(sig.SignedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert signatory: %w", err)
		}
	}
	return nil
}

// GetContract loads a contract with its signatories, scoped by organization.
func (s *Store) GetContract(ctx context.Context, orgID core.OrgID, id core.ContractID) (*contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = ? AND org_id = ?`, id, orgID)

	c, err := scanContract(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadSignatories(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListContracts returns an organization's contracts, optionally only the
// latest version of each chain.
func (s *Store) ListContracts(ctx context.Context, orgID core.OrgID, latestOnly bool) ([]*contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + contractColumns + ` FROM contracts WHERE org_id = ?`
	if latestOnly {
		query += ` AND is_latest_version`
	}
	query += ` ORDER BY contract_number, version`

	return s.queryContracts(ctx, query, orgID)
}

// ListContractVersions returns the full version chain for a contract number,
// oldest first.
func (s *Store) ListContractVersions(ctx context.Context, orgID core.OrgID, contractNumber string) ([]*contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryContracts(ctx,
		`SELECT `+contractColumns+` FROM contracts
		 WHERE org_id = ? AND contract_number = ? ORDER BY version`,
		orgID, contractNumber)
}

// ListContractsNeedingExpiry returns contracts whose stored status is
// non-terminal but whose expiry date has passed: the flagged set awaiting an
// explicit expiry transition. Read-only; never writes.
func (s *Store) ListContractsNeedingExpiry(ctx context.Context, orgID core.OrgID, now time.Time) ([]*contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryContracts(ctx,
		`SELECT `+contractColumns+` FROM contracts
		 WHERE org_id = ? AND expiry_date IS NOT NULL AND expiry_date < ?
		   AND status NOT IN ('terminated', 'superseded', 'renewed', 'expired')
		 ORDER BY expiry_date`,
		orgID, formatDate(now))
}

// ListContractsExpiring returns non-terminal contracts whose expiry date
// falls within the next withinDays days.
func (s *Store) ListContractsExpiring(ctx context.Context, orgID core.OrgID, now time.Time, withinDays int) ([]*contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	horizon := core.DateOf(now).AddDate(0, 0, withinDays)
	return s.queryContracts(ctx,
		`SELECT `+contractColumns+` FROM contracts
		 WHERE org_id = ? AND expiry_date IS NOT NULL
		   AND expiry_date >= ? AND expiry_date <= ?
		   AND status NOT IN ('terminated', 'superseded', 'renewed', 'expired')
		 ORDER BY expiry_date`,
		orgID, formatDate(now), formatDate(horizon))
}

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]*contract.Contract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []*contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range contracts {
		if err := s.loadSignatories(ctx, c); err != nil {
			return nil, err
		}
	}
	return contracts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*contract.Contract, error) {
	var (
		c             contract.Contract
		status        string
		effectiveDate sql.NullString
		expiryDate    sql.NullString
		contractValue sql.NullString
		prevID        sql.NullString
		terminatedBy  sql.NullString
		terminatedAt  sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := row.Scan(
		&c.ID, &c.OrgID, &c.ContractNumber, &status,
		&effectiveDate, &expiryDate, &contractValue, &c.Currency,
		&c.RenewalNoticeDays, &c.Version, &c.IsLatestVersion, &prevID,
		&terminatedBy, &terminatedAt, &c.Revision, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}

	c.Status, err = contract.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	c.EffectiveDate = parseDatePtr(effectiveDate)
	c.ExpiryDate = parseDatePtr(expiryDate)
	if contractValue.Valid && contractValue.String != "" {
		d, err := decimal.NewFromString(contractValue.String)
		if err != nil {
			return nil, fmt.Errorf("malformed contract value %q: %w", contractValue.String, err)
		}
		c.ContractValue = &d
	}
	if prevID.Valid {
		id := core.ContractID(prevID.String)
		c.PreviousVersionID = &id
	}
	if terminatedBy.Valid {
		actor := core.ActorID(terminatedBy.String)
		c.TerminatedBy = &actor
	}
	c.TerminatedAt = parseTimePtr(terminatedAt)
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func (s *Store) loadSignatories(ctx context.Context, c *contract.Contract) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, name, email, role, required, state, signed_at
		FROM contract_signatories WHERE contract_id = ? ORDER BY name`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to query signatories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sig      contract.Signatory
			email    sql.NullString
			role     sql.NullString
			state    string
			signedAt sql.NullString
		)
		if err := rows.Scan(&sig.ID, &sig.ContractID, &sig.Name, &email, &role, &sig.Required, &state, &signedAt); err != nil {
			return fmt.Errorf("failed to scan signatory: %w", err)
		}
		sig.Email = email.String
		sig.Role = role.String
		sig.State, err = contract.ParseSignatoryState(state)
		if err != nil {
			return err
		}
		sig.SignedAt = parseTimePtr(signedAt)
		c.Signatories = append(c.Signatories, sig)
	}
	return rows.Err()
}

// staleOrMissing distinguishes a lost-update conflict from a missing row
// after an UPDATE affected zero rows.
func (s *Store) staleOrMissing(ctx context.Context, tx *sql.Tx, table, id string, orgID core.OrgID) error {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE id = ? AND org_id = ?`, id, orgID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check %s row: %w", table, err)
	}
	if count == 0 {
		return core.ErrNotFound
	}
	return core.ErrConcurrentModification
}

// =============================================================================
// COMPLIANCE REQUIREMENTS
// =============================================================================

func (s *Store) SaveRequirement(ctx context.Context, r *compliance.Requirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compliance_requirements
			(id, org_id, name, category, description, validity_days, lookahead_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, category = excluded.category,
			description = excluded.description,
			validity_days = excluded.validity_days,
			lookahead_days = excluded.lookahead_days`,
		r.ID, r.OrgID, r.Name, r.Category, r.Description,
		r.ValidityDays, r.LookaheadDays, formatTime(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save requirement: %w", err)
	}
	return nil
}

func (s *Store) GetRequirement(ctx context.Context, orgID core.OrgID, id core.RequirementID) (*compliance.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r         compliance.Requirement
		category  sql.NullString
		desc      sql.NullString
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, category, description, validity_days, lookahead_days, created_at
		FROM compliance_requirements WHERE id = ? AND org_id = ?`, id, orgID,
	).Scan(&r.ID, &r.OrgID, &r.Name, &category, &desc, &r.ValidityDays, &r.LookaheadDays, &createdAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get requirement: %w", err)
	}
	r.Category = category.String
	r.Description = desc.String
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

func (s *Store) ListRequirements(ctx context.Context, orgID core.OrgID) ([]*compliance.Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, name, category, description, validity_days, lookahead_days, created_at
		FROM compliance_requirements WHERE org_id = ? ORDER BY name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requirements: %w", err)
	}
	defer rows.Close()

	var reqs []*compliance.Requirement
	for rows.Next() {
		var (
			r         compliance.Requirement
			category  sql.NullString
			desc      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.OrgID, &r.Name, &category, &desc, &r.ValidityDays, &r.LookaheadDays, &createdAt); err != nil {
			return nil, err
		}
		r.Category = category.String
		r.Description = desc.String
		r.CreatedAt = parseTime(createdAt)
		reqs = append(reqs, &r)
	}
	return reqs, rows.Err()
}

// =============================================================================
// COMPLIANCE ITEMS
// =============================================================================

const itemColumns = `id, org_id, entity_type, entity_id, requirement_id, status,
	effective_date, expiry_date, verified_at, verified_by, waived_at, waived_by,
	notes, revision, created_at, updated_at`

func (s *Store) CreateComplianceItem(ctx context.Context, it *compliance.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO compliance_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.OrgID, it.EntityType, it.EntityID, nullRequirementID(it.RequirementID),
		it.Status, nullDate(it.EffectiveDate), nullDate(it.ExpiryDate),
		nullTimePtr(it.VerifiedAt), nullActor(it.VerifiedBy),
		nullTimePtr(it.WaivedAt), nullActor(it.WaivedBy),
		it.Notes, it.Revision, formatTime(it.CreatedAt), formatTime(it.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert compliance item: %w", err)
	}
	return nil
}

func (s *Store) UpdateComplianceItem(ctx context.Context, it *compliance.Item, expectedRevision int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.ExecContext(ctx, `
		UPDATE compliance_items SET
			status = ?, effective_date = ?, expiry_date = ?,
			verified_at = ?, verified_by = ?, waived_at = ?, waived_by = ?,
			notes = ?, revision = revision + 1, updated_at = ?
		WHERE id = ? AND org_id = ? AND revision = ?`,
		it.Status, nullDate(it.EffectiveDate), nullDate(it.ExpiryDate),
		nullTimePtr(it.VerifiedAt), nullActor(it.VerifiedBy),
		nullTimePtr(it.WaivedAt), nullActor(it.WaivedBy),
		it.Notes, formatTime(it.UpdatedAt),
		it.ID, it.OrgID, expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to update compliance item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.staleOrMissing(ctx, sqlTx, "compliance_items", string(it.ID), it.OrgID)
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	it.Revision = expectedRevision + 1
	return nil
}

func (s *Store) GetComplianceItem(ctx context.Context, orgID core.OrgID, id core.ComplianceItemID) (*compliance.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM compliance_items WHERE id = ? AND org_id = ?`, id, orgID)
	return scanComplianceItem(row)
}

// ListComplianceItems returns items for an organization, optionally filtered
// by tracked entity.
func (s *Store) ListComplianceItems(ctx context.Context, orgID core.OrgID, entityType, entityID string) ([]*compliance.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + itemColumns + ` FROM compliance_items WHERE org_id = ?`
	args := []any{orgID}
	if entityType != "" {
		query += ` AND entity_type = ?`
		args = append(args, entityType)
	}
	if entityID != "" {
		query += ` AND entity_id = ?`
		args = append(args, entityID)
	}
	query += ` ORDER BY created_at`

	return s.queryComplianceItems(ctx, query, args...)
}

// ListComplianceExpiring returns items whose expiry date falls on or before
// now + lookahead, excluding waived and rejected items. Includes already
// past-expiry items so alert widgets can show the expired bucket.
func (s *Store) ListComplianceExpiring(ctx context.Context, orgID core.OrgID, now time.Time, lookaheadDays int) ([]*compliance.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if lookaheadDays <= 0 {
		lookaheadDays = compliance.DefaultLookaheadDays
	}
	horizon := core.DateOf(now).AddDate(0, 0, lookaheadDays)

	return s.queryComplianceItems(ctx,
		`SELECT `+itemColumns+` FROM compliance_items
		 WHERE org_id = ? AND expiry_date IS NOT NULL AND expiry_date <= ?
		   AND status NOT IN ('waived', 'rejected')
		 ORDER BY expiry_date`,
		orgID, formatDate(horizon))
}

func (s *Store) queryComplianceItems(ctx context.Context, query string, args ...any) ([]*compliance.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query compliance items: %w", err)
	}
	defer rows.Close()

	var items []*compliance.Item
	for rows.Next() {
		it, err := scanComplianceItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanComplianceItem(row rowScanner) (*compliance.Item, error) {
	var (
		it            compliance.Item
		requirementID sql.NullString
		status        string
		effectiveDate sql.NullString
		expiryDate    sql.NullString
		verifiedAt    sql.NullString
		verifiedBy    sql.NullString
		waivedAt      sql.NullString
		waivedBy      sql.NullString
		notes         sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := row.Scan(
		&it.ID, &it.OrgID, &it.EntityType, &it.EntityID, &requirementID, &status,
		&effectiveDate, &expiryDate, &verifiedAt, &verifiedBy, &waivedAt, &waivedBy,
		&notes, &it.Revision, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan compliance item: %w", err)
	}

	it.Status, err = compliance.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if requirementID.Valid {
		id := core.RequirementID(requirementID.String)
		it.RequirementID = &id
	}
	it.EffectiveDate = parseDatePtr(effectiveDate)
	it.ExpiryDate = parseDatePtr(expiryDate)
	it.VerifiedAt = parseTimePtr(verifiedAt)
	if verifiedBy.Valid {
		actor := core.ActorID(verifiedBy.String)
		it.VerifiedBy = &actor
	}
	it.WaivedAt = parseTimePtr(waivedAt)
	if waivedBy.Valid {
		actor := core.ActorID(waivedBy.String)
		it.WaivedBy = &actor
	}
	it.Notes = notes.String
	it.CreatedAt = parseTime(createdAt)
	it.UpdatedAt = parseTime(updatedAt)
	return &it, nil
}

// =============================================================================
// RATE CARDS
// =============================================================================

// SaveRateCard inserts or replaces a rate card version and its items
// atomically.
func (s *Store) SaveRateCard(ctx context.Context, card *rate.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO rate_cards (id, org_id, name, currency, unit, version, is_latest_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, currency = excluded.currency, unit = excluded.unit,
			is_latest_version = excluded.is_latest_version, updated_at = excluded.updated_at`,
		card.ID, card.OrgID, card.Name, card.Currency, card.Unit,
		card.Version, card.IsLatestVersion, formatTime(card.CreatedAt), formatTime(card.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save rate card: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, `DELETE FROM rate_card_items WHERE card_id = ?`, card.ID); err != nil {
		return fmt.Errorf("failed to clear rate card items: %w", err)
	}
	for _, it := range card.Items {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO rate_card_items
				(id, card_id, job_category, job_level,
				 min_pay_rate, max_pay_rate, target_pay_rate,
				 min_bill_rate, max_bill_rate, target_bill_rate,
				 min_margin_pct, target_margin_pct)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, card.ID, it.JobCategory, it.JobLevel,
			it.MinPayRate.String(), it.MaxPayRate.String(), it.TargetPayRate.String(),
			it.MinBillRate.String(), it.MaxBillRate.String(), it.TargetBillRate.String(),
			it.MinMarginPct.String(), it.TargetMarginPct.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert rate card item: %w", err)
		}
	}

	return sqlTx.Commit()
}

func (s *Store) GetRateCard(ctx context.Context, orgID core.OrgID, id core.RateCardID) (*rate.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, currency, unit, version, is_latest_version, created_at, updated_at
		FROM rate_cards WHERE id = ? AND org_id = ?`, id, orgID)

	card, err := scanRateCard(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadRateCardItems(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *Store) ListRateCards(ctx context.Context, orgID core.OrgID, latestOnly bool) ([]*rate.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, org_id, name, currency, unit, version, is_latest_version, created_at, updated_at
		FROM rate_cards WHERE org_id = ?`
	if latestOnly {
		query += ` AND is_latest_version`
	}
	query += ` ORDER BY name, version`

	rows, err := s.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate cards: %w", err)
	}
	defer rows.Close()

	var cards []*rate.Card
	for rows.Next() {
		card, err := scanRateCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, card := range cards {
		if err := s.loadRateCardItems(ctx, card); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

// ListRateCardVersions returns the version chain for a card name, oldest first.
func (s *Store) ListRateCardVersions(ctx context.Context, orgID core.OrgID, name string) ([]*rate.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, name, currency, unit, version, is_latest_version, created_at, updated_at
		FROM rate_cards WHERE org_id = ? AND name = ? ORDER BY version`, orgID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate card versions: %w", err)
	}
	defer rows.Close()

	var cards []*rate.Card
	for rows.Next() {
		card, err := scanRateCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, card := range cards {
		if err := s.loadRateCardItems(ctx, card); err != nil {
			return nil, err
		}
	}
	return cards, nil
}

func scanRateCard(row rowScanner) (*rate.Card, error) {
	var (
		card      rate.Card
		unit      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&card.ID, &card.OrgID, &card.Name, &card.Currency, &unit,
		&card.Version, &card.IsLatestVersion, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rate card: %w", err)
	}
	card.Unit, err = rate.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	card.CreatedAt = parseTime(createdAt)
	card.UpdatedAt = parseTime(updatedAt)
	return &card, nil
}

func (s *Store) loadRateCardItems(ctx context.Context, card *rate.Card) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, card_id, job_category, job_level,
		       min_pay_rate, max_pay_rate, target_pay_rate,
		       min_bill_rate, max_bill_rate, target_bill_rate,
		       min_margin_pct, target_margin_pct
		FROM rate_card_items WHERE card_id = ?
		ORDER BY job_category, job_level`, card.ID)
	if err != nil {
		return fmt.Errorf("failed to query rate card items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it   rate.CardItem
			vals [8]string
		)
		if err := rows.Scan(&it.ID, &it.CardID, &it.JobCategory, &it.JobLevel,
			&vals[0], &vals[1], &vals[2], &vals[3], &vals[4], &vals[5], &vals[6], &vals[7]); err != nil {
			return fmt.Errorf("failed to scan rate card item: %w", err)
		}
		parsed := make([]decimal.Decimal, len(vals))
		for i, v := range vals {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("malformed rate %q on card item %s: %w", v, it.ID, err)
			}
			parsed[i] = d
		}
		it.MinPayRate, it.MaxPayRate, it.TargetPayRate = parsed[0], parsed[1], parsed[2]
		it.MinBillRate, it.MaxBillRate, it.TargetBillRate = parsed[3], parsed[4], parsed[5]
		it.MinMarginPct, it.TargetMarginPct = parsed[6], parsed[7]
		card.Items = append(card.Items, it)
	}
	return rows.Err()
}

// =============================================================================
// RATE APPROVALS (rate.ApprovalStore interface)
// =============================================================================

const approvalColumns = `id, org_id, entity_type, entity_id, bill_rate, pay_rate,
	unit, currency, quote_effective_at, status, below_minimum,
	requested_by, decided_by, decided_at, message, revision, created_at, updated_at`

func (s *Store) CreateApproval(ctx context.Context, a *rate.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_approvals (`+approvalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OrgID, a.EntityType, a.EntityID,
		a.Proposed.BillRate.String(), a.Proposed.PayRate.String(),
		a.Proposed.Unit, a.Proposed.Currency, nullTime(a.Proposed.EffectiveAt),
		a.Status, a.BelowMinimum, a.RequestedBy,
		nullActor(a.DecidedBy), nullTimePtr(a.DecidedAt), a.Message,
		a.Revision, formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval: %w", err)
	}
	return nil
}

func (s *Store) UpdateApproval(ctx context.Context, a *rate.Approval, expectedRevision int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	res, err := sqlTx.ExecContext(ctx, `
		UPDATE rate_approvals SET
			bill_rate = ?, pay_rate = ?, unit = ?, currency = ?, quote_effective_at = ?,
			status = ?, below_minimum = ?, requested_by = ?,
			decided_by = ?, decided_at = ?, message = ?,
			revision = revision + 1, updated_at = ?
		WHERE id = ? AND org_id = ? AND revision = ?`,
		a.Proposed.BillRate.String(), a.Proposed.PayRate.String(),
		a.Proposed.Unit, a.Proposed.Currency, nullTime(a.Proposed.EffectiveAt),
		a.Status, a.BelowMinimum, a.RequestedBy,
		nullActor(a.DecidedBy), nullTimePtr(a.DecidedAt), a.Message,
		formatTime(a.UpdatedAt),
		a.ID, a.OrgID, expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.staleOrMissing(ctx, sqlTx, "rate_approvals", string(a.ID), a.OrgID)
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	a.Revision = expectedRevision + 1
	return nil
}

func (s *Store) GetApproval(ctx context.Context, orgID core.OrgID, id core.ApprovalID) (*rate.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+approvalColumns+` FROM rate_approvals WHERE id = ? AND org_id = ?`, id, orgID)
	return scanApproval(row)
}

// ListApprovals returns an organization's approvals, optionally filtered by
// status.
func (s *Store) ListApprovals(ctx context.Context, orgID core.OrgID, status rate.ApprovalStatus) ([]*rate.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + approvalColumns + ` FROM rate_approvals WHERE org_id = ?`
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*rate.Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

func scanApproval(row rowScanner) (*rate.Approval, error) {
	var (
		a           rate.Approval
		billRate    string
		payRate     string
		unit        string
		effectiveAt sql.NullString
		status      string
		decidedBy   sql.NullString
		decidedAt   sql.NullString
		message     sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&a.ID, &a.OrgID, &a.EntityType, &a.EntityID, &billRate, &payRate,
		&unit, &a.Proposed.Currency, &effectiveAt, &status, &a.BelowMinimum,
		&a.RequestedBy, &decidedBy, &decidedAt, &message,
		&a.Revision, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan approval: %w", err)
	}

	if a.Proposed.BillRate, err = decimal.NewFromString(billRate); err != nil {
		return nil, fmt.Errorf("malformed bill rate %q: %w", billRate, err)
	}
	if a.Proposed.PayRate, err = decimal.NewFromString(payRate); err != nil {
		return nil, fmt.Errorf("malformed pay rate %q: %w", payRate, err)
	}
	if a.Proposed.Unit, err = rate.ParseUnit(unit); err != nil {
		return nil, err
	}
	if effectiveAt.Valid {
		a.Proposed.EffectiveAt = parseTime(effectiveAt.String)
	}
	if a.Status, err = rate.ParseApprovalStatus(status); err != nil {
		return nil, err
	}
	if decidedBy.Valid {
		actor := core.ActorID(decidedBy.String)
		a.DecidedBy = &actor
	}
	a.DecidedAt = parseTimePtr(decidedAt)
	a.Message = message.String
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}

// =============================================================================
// AUDIT LOG (append-only)
// =============================================================================

func (s *Store) AppendAudit(ctx context.Context, entry core.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log
			(id, org_id, entity_kind, entity_id, action, actor_id, from_status, to_status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.OrgID, entry.EntityKind, entry.EntityID, entry.Action,
		entry.ActorID, entry.FromStatus, entry.ToStatus, entry.Detail,
		formatTime(entry.At),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListAudit returns audit entries for one entity, oldest first.
func (s *Store) ListAudit(ctx context.Context, orgID core.OrgID, entityKind, entityID string) ([]core.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, org_id, entity_kind, entity_id, action, actor_id, from_status, to_status, detail, created_at
		FROM audit_log
		WHERE org_id = ? AND entity_kind = ? AND entity_id = ?
		ORDER BY created_at, id`, orgID, entityKind, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []core.AuditEntry
	for rows.Next() {
		var (
			e          core.AuditEntry
			fromStatus sql.NullString
			toStatus   sql.NullString
			detail     sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.OrgID, &e.EntityKind, &e.EntityID, &e.Action,
			&e.ActorID, &fromStatus, &toStatus, &detail, &createdAt); err != nil {
			return nil, err
		}
		e.FromStatus = fromStatus.String
		e.ToStatus = toStatus.String
		e.Detail = detail.String
		e.At = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// VALUE HELPERS
// =============================================================================

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t time.Time) string {
	return core.DateOf(t).Format("2006-01-02")
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseDatePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	// Dates are stored as YYYY-MM-DD; older rows may carry full timestamps.
	if t, err := time.Parse("2006-01-02", s.String); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s.String); err == nil {
		t = core.DateOf(t)
		return &t
	}
	return nil
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatDate(*t)
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullActor(a *core.ActorID) any {
	if a == nil {
		return nil
	}
	return string(*a)
}

func nullContractID(id *core.ContractID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}

func nullRequirementID(id *core.RequirementID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}
