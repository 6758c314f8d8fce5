package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	"github.com/fairyhunter13/slot-reservation-system/pkg/database"
	"github.com/fairyhunter13/slot-reservation-system/pkg/push"
)

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func beginner(tx *mockTx) *mockTxBeginner {
	return &mockTxBeginner{
		beginFn: func(ctx context.Context) (pgx.Tx, error) {
			return tx, nil
		},
	}
}

// mockSlotRepository is a mock implementation of SlotRepositoryInterface.
type mockSlotRepository struct {
	listFn           func(ctx context.Context) ([]model.Slot, error)
	getByNumberFn    func(ctx context.Context, number int) (*model.Slot, error)
	getForUpdateFn   func(ctx context.Context, tx database.TxQuerier, number int) (*model.Slot, error)
	insertIfAbsentFn func(ctx context.Context, tx database.TxQuerier, slot *model.Slot) error
	confirmFn        func(ctx context.Context, number int) error
	deleteFn         func(ctx context.Context, tx database.TxQuerier, number int) error
	deleteAllFn      func(ctx context.Context) (int64, error)
}

func (m *mockSlotRepository) List(ctx context.Context) ([]model.Slot, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Slot{}, nil
}

func (m *mockSlotRepository) GetByNumber(ctx context.Context, number int) (*model.Slot, error) {
	if m.getByNumberFn != nil {
		return m.getByNumberFn(ctx, number)
	}
	return nil, nil
}

func (m *mockSlotRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, number int) (*model.Slot, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, number)
	}
	return nil, ErrSlotNotFound
}

func (m *mockSlotRepository) InsertIfAbsent(ctx context.Context, tx database.TxQuerier, slot *model.Slot) error {
	if m.insertIfAbsentFn != nil {
		return m.insertIfAbsentFn(ctx, tx, slot)
	}
	slot.ID = model.SlotID(slot.Number)
	return nil
}

func (m *mockSlotRepository) Confirm(ctx context.Context, number int) error {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, number)
	}
	return nil
}

func (m *mockSlotRepository) Delete(ctx context.Context, tx database.TxQuerier, number int) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, number)
	}
	return nil
}

func (m *mockSlotRepository) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFn != nil {
		return m.deleteAllFn(ctx)
	}
	return 0, nil
}

// mockConfigRepository is a mock implementation of ConfigRepositoryInterface.
type mockConfigRepository struct {
	getFn                 func(ctx context.Context) (*model.ChallengeConfig, error)
	getForShareFn         func(ctx context.Context, tx database.TxQuerier) (*model.ChallengeConfig, error)
	insertDefaultFn       func(ctx context.Context, defaults *model.ChallengeConfig) error
	updateChallengeSizeFn func(ctx context.Context, size int) (bool, error)
	updateDepositFn       func(ctx context.Context, patch model.DepositPatch) (bool, error)
}

func (m *mockConfigRepository) Get(ctx context.Context) (*model.ChallengeConfig, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return nil, nil
}

func (m *mockConfigRepository) GetForShare(ctx context.Context, tx database.TxQuerier) (*model.ChallengeConfig, error) {
	if m.getForShareFn != nil {
		return m.getForShareFn(ctx, tx)
	}
	return nil, nil
}

func (m *mockConfigRepository) InsertDefault(ctx context.Context, defaults *model.ChallengeConfig) error {
	if m.insertDefaultFn != nil {
		return m.insertDefaultFn(ctx, defaults)
	}
	return nil
}

func (m *mockConfigRepository) UpdateChallengeSize(ctx context.Context, size int) (bool, error) {
	if m.updateChallengeSizeFn != nil {
		return m.updateChallengeSizeFn(ctx, size)
	}
	return true, nil
}

func (m *mockConfigRepository) UpdateDeposit(ctx context.Context, patch model.DepositPatch) (bool, error) {
	if m.updateDepositFn != nil {
		return m.updateDepositFn(ctx, patch)
	}
	return true, nil
}

// mockCredentialRepository keeps credentials in a map unless a fn overrides it.
type mockCredentialRepository struct {
	creds    map[string]string
	insertFn func(ctx context.Context, email, passwordHash string) error
	deleteFn func(ctx context.Context, email string) error
	rekeyFn  func(ctx context.Context, tx database.TxQuerier, oldEmail, newEmail string) error
	getErr   error
}

func newMockCredentialRepository() *mockCredentialRepository {
	return &mockCredentialRepository{creds: map[string]string{}}
}

func (m *mockCredentialRepository) Insert(ctx context.Context, email, passwordHash string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, email, passwordHash)
	}
	if _, ok := m.creds[email]; ok {
		return ErrEmailInUse
	}
	m.creds[email] = passwordHash
	return nil
}

func (m *mockCredentialRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	hash, ok := m.creds[email]
	if !ok {
		return nil, nil
	}
	return &model.Credential{Email: email, PasswordHash: hash}, nil
}

func (m *mockCredentialRepository) Delete(ctx context.Context, email string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, email)
	}
	delete(m.creds, email)
	return nil
}

func (m *mockCredentialRepository) Rekey(ctx context.Context, tx database.TxQuerier, oldEmail, newEmail string) error {
	if m.rekeyFn != nil {
		return m.rekeyFn(ctx, tx, oldEmail, newEmail)
	}
	if _, ok := m.creds[newEmail]; ok {
		return ErrEmailInUse
	}
	if hash, ok := m.creds[oldEmail]; ok {
		m.creds[newEmail] = hash
		delete(m.creds, oldEmail)
	}
	return nil
}

// mockAdminRepository is a mock implementation of AdminRepositoryInterface.
type mockAdminRepository struct {
	insertFn       func(ctx context.Context, tx database.TxQuerier, admin *model.Admin) error
	getByEmailFn   func(ctx context.Context, email string) (*model.Admin, error)
	getForUpdateFn func(ctx context.Context, tx database.TxQuerier, email string) (*model.Admin, error)
	listFn         func(ctx context.Context) ([]model.Admin, error)
	countFn        func(ctx context.Context) (int, error)
	updateNameFn   func(ctx context.Context, email, name string) error
	deleteFn       func(ctx context.Context, tx database.TxQuerier, email string) (bool, error)
}

func (m *mockAdminRepository) Insert(ctx context.Context, tx database.TxQuerier, admin *model.Admin) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, admin)
	}
	return nil
}

func (m *mockAdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockAdminRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, email string) (*model.Admin, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, email)
	}
	return nil, ErrAdminNotFound
}

func (m *mockAdminRepository) List(ctx context.Context) ([]model.Admin, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Admin{}, nil
}

func (m *mockAdminRepository) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockAdminRepository) UpdateName(ctx context.Context, email, name string) error {
	if m.updateNameFn != nil {
		return m.updateNameFn(ctx, email, name)
	}
	return nil
}

func (m *mockAdminRepository) Delete(ctx context.Context, tx database.TxQuerier, email string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, email)
	}
	return true, nil
}

// mockPushTokenRepository is a mock implementation of PushTokenRepositoryInterface.
type mockPushTokenRepository struct {
	upsertFn     func(ctx context.Context, device *model.PushDevice) error
	listTokensFn func(ctx context.Context) ([]string, error)
}

func (m *mockPushTokenRepository) Upsert(ctx context.Context, device *model.PushDevice) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, device)
	}
	return nil
}

func (m *mockPushTokenRepository) ListTokens(ctx context.Context) ([]string, error) {
	if m.listTokensFn != nil {
		return m.listTokensFn(ctx)
	}
	return []string{}, nil
}

// mockSender records the messages it is asked to send.
type mockSender struct {
	sent   []push.Message
	sendFn func(ctx context.Context, msg push.Message) error
}

func (m *mockSender) Send(ctx context.Context, msg push.Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return nil
}

// failingBroker fails every call with err.
type failingBroker struct {
	err error
}

func (b *failingBroker) Publish(ctx context.Context, topic string) error { return b.err }

func (b *failingBroker) Subscribe(ctx context.Context, topic string) (<-chan struct{}, error) {
	return nil, b.err
}

func (b *failingBroker) Close() error { return nil }

// unavailable is a connection-level error the services treat as transient.
func unavailable() error {
	return &pgconn.PgError{Code: "08006", Message: "connection failure"}
}

// denied is the error a database returns for a statement lacking privileges.
func denied() error {
	return &pgconn.PgError{Code: "42501", Message: "permission denied for table challenge_config"}
}
