package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/slot-reservation-system/internal/model"
	appvalidator "github.com/fairyhunter13/slot-reservation-system/internal/validator"
)

// mockSlotService is a mock implementation of SlotServiceInterface.
type mockSlotService struct {
	listFn       func(ctx context.Context) ([]model.Slot, error)
	subscribeFn  func(ctx context.Context) (<-chan []model.Slot, error)
	reserveFn    func(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error)
	addManualFn  func(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error)
	confirmFn    func(ctx context.Context, id string) error
	rejectFn     func(ctx context.Context, id string) error
	resetAllFn   func(ctx context.Context) (int64, error)
	statusFn     func(ctx context.Context, number int) (model.SlotStatus, error)
	boardFn      func(ctx context.Context) (*model.Board, error)
	adminQueueFn func(ctx context.Context) ([]model.Slot, error)
	depositFn    func(ctx context.Context, number int) (*model.DepositInstructions, error)
}

func (m *mockSlotService) List(ctx context.Context) ([]model.Slot, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Slot{}, nil
}

func (m *mockSlotService) Subscribe(ctx context.Context) (<-chan []model.Slot, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx)
	}
	ch := make(chan []model.Slot)
	close(ch)
	return ch, nil
}

func (m *mockSlotService) Reserve(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error) {
	if m.reserveFn != nil {
		return m.reserveFn(ctx, req)
	}
	return &model.Slot{ID: model.SlotID(req.Number), Number: req.Number, Status: model.StatusPending}, nil
}

func (m *mockSlotService) AddManual(ctx context.Context, req *model.ReserveSlotRequest) (*model.Slot, error) {
	if m.addManualFn != nil {
		return m.addManualFn(ctx, req)
	}
	return &model.Slot{ID: model.SlotID(req.Number), Number: req.Number, Status: model.StatusConfirmed}, nil
}

func (m *mockSlotService) Confirm(ctx context.Context, id string) error {
	if m.confirmFn != nil {
		return m.confirmFn(ctx, id)
	}
	return nil
}

func (m *mockSlotService) Reject(ctx context.Context, id string) error {
	if m.rejectFn != nil {
		return m.rejectFn(ctx, id)
	}
	return nil
}

func (m *mockSlotService) ResetAll(ctx context.Context) (int64, error) {
	if m.resetAllFn != nil {
		return m.resetAllFn(ctx)
	}
	return 0, nil
}

func (m *mockSlotService) Status(ctx context.Context, number int) (model.SlotStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx, number)
	}
	return model.StatusAvailable, nil
}

func (m *mockSlotService) Board(ctx context.Context) (*model.Board, error) {
	if m.boardFn != nil {
		return m.boardFn(ctx)
	}
	board := model.BuildBoard(nil, 50)
	return &board, nil
}

func (m *mockSlotService) AdminQueue(ctx context.Context) ([]model.Slot, error) {
	if m.adminQueueFn != nil {
		return m.adminQueueFn(ctx)
	}
	return []model.Slot{}, nil
}

func (m *mockSlotService) DepositInstructions(ctx context.Context, number int) (*model.DepositInstructions, error) {
	if m.depositFn != nil {
		return m.depositFn(ctx, number)
	}
	return &model.DepositInstructions{Number: number}, nil
}

// mockConfigService is a mock implementation of ConfigServiceInterface.
type mockConfigService struct {
	getFn              func(ctx context.Context) (*model.ChallengeConfig, error)
	subscribeFn        func(ctx context.Context) (<-chan *model.ChallengeConfig, error)
	setChallengeSizeFn func(ctx context.Context, size int) error
	setDepositFn       func(ctx context.Context, patch model.DepositPatch) error
}

func (m *mockConfigService) Get(ctx context.Context) (*model.ChallengeConfig, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return &model.ChallengeConfig{ChallengeSize: 100, Currency: "MZN"}, nil
}

func (m *mockConfigService) Subscribe(ctx context.Context) (<-chan *model.ChallengeConfig, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx)
	}
	ch := make(chan *model.ChallengeConfig)
	close(ch)
	return ch, nil
}

func (m *mockConfigService) SetChallengeSize(ctx context.Context, size int) error {
	if m.setChallengeSizeFn != nil {
		return m.setChallengeSizeFn(ctx, size)
	}
	return nil
}

func (m *mockConfigService) SetDeposit(ctx context.Context, patch model.DepositPatch) error {
	if m.setDepositFn != nil {
		return m.setDepositFn(ctx, patch)
	}
	return nil
}

// mockAuthService is a mock implementation of AuthServiceInterface and SessionAuthenticator.
type mockAuthService struct {
	signInFn         func(ctx context.Context, email, password string) (*model.Session, error)
	signOutFn        func(ctx context.Context, token string) error
	currentSessionFn func(ctx context.Context, token string) (*model.Session, error)
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return &model.Session{Token: "token", Email: email}, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, token string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) CurrentSession(ctx context.Context, token string) (*model.Session, error) {
	if m.currentSessionFn != nil {
		return m.currentSessionFn(ctx, token)
	}
	return &model.Session{ID: "sid", Email: "ana@example.com"}, nil
}

// mockAdminService is a mock implementation of AdminServiceInterface and MembershipChecker.
type mockAdminService struct {
	createFn      func(ctx context.Context, req *model.CreateAdminRequest) (*model.Admin, error)
	listFn        func(ctx context.Context) ([]model.Admin, error)
	renameFn      func(ctx context.Context, email, name string) (*model.Admin, error)
	changeEmailFn func(ctx context.Context, oldEmail, newEmail string) (*model.Admin, error)
	deleteFn      func(ctx context.Context, email string) error
	isMemberFn    func(ctx context.Context, email string) (bool, error)
}

func (m *mockAdminService) Create(ctx context.Context, req *model.CreateAdminRequest) (*model.Admin, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return &model.Admin{Email: req.Email, Name: req.Name, Role: model.RoleAdmin}, nil
}

func (m *mockAdminService) List(ctx context.Context) ([]model.Admin, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []model.Admin{}, nil
}

func (m *mockAdminService) Rename(ctx context.Context, email, name string) (*model.Admin, error) {
	if m.renameFn != nil {
		return m.renameFn(ctx, email, name)
	}
	return &model.Admin{Email: email, Name: name}, nil
}

func (m *mockAdminService) ChangeEmail(ctx context.Context, oldEmail, newEmail string) (*model.Admin, error) {
	if m.changeEmailFn != nil {
		return m.changeEmailFn(ctx, oldEmail, newEmail)
	}
	return &model.Admin{Email: newEmail}, nil
}

func (m *mockAdminService) Delete(ctx context.Context, email string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, email)
	}
	return nil
}

func (m *mockAdminService) IsMember(ctx context.Context, email string) (bool, error) {
	if m.isMemberFn != nil {
		return m.isMemberFn(ctx, email)
	}
	return true, nil
}

// mockPushService is a mock implementation of PushServiceInterface.
type mockPushService struct {
	registerDeviceFn func(ctx context.Context, req *model.RegisterDeviceRequest) (*model.PushDevice, error)
	broadcastFn      func(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error)
}

func (m *mockPushService) RegisterDevice(ctx context.Context, req *model.RegisterDeviceRequest) (*model.PushDevice, error) {
	if m.registerDeviceFn != nil {
		return m.registerDeviceFn(ctx, req)
	}
	return &model.PushDevice{ID: model.PushDeviceID(req.Token), Token: req.Token}, nil
}

func (m *mockPushService) Broadcast(ctx context.Context, req *model.BroadcastRequest) (*model.BroadcastResult, error) {
	if m.broadcastFn != nil {
		return m.broadcastFn(ctx, req)
	}
	return &model.BroadcastResult{}, nil
}

func newValidator() *validator.Validate {
	return appvalidator.New()
}

// doJSON sends a request with an optional JSON body and returns the status and body.
func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

// errorOf decodes {"error": "..."}.
func errorOf(t *testing.T, body []byte) string {
	t.Helper()
	var result map[string]string
	require.NoError(t, json.Unmarshal(body, &result))
	return result["error"]
}
