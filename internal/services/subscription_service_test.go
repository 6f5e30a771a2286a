package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"bilimBack/internal/models"
	"bilimBack/internal/pay"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[int]models.User
}

func newFakeUserStore(users ...models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) SetSubscription(_ context.Context, userID int, subscriptionID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Subscription = models.Subscription{ID: &subscriptionID, Status: &status}
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) UpdateSubscriptionStatus(_ context.Context, userID int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.Subscription.ID == nil {
		return models.ErrNoActiveSubscription
	}
	u.Subscription.Status = &status
	s.users[userID] = u
	return nil
}

func (s *fakeUserStore) ClearSubscriptionIf(_ context.Context, userID int, subscriptionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.Subscription.ID == nil || *u.Subscription.ID != subscriptionID {
		return false, nil
	}
	u.Subscription = models.Subscription{}
	s.users[userID] = u
	return true, nil
}

type fakePaymentStore struct {
	mu      sync.Mutex
	byPayID map[string]models.PaymentRecord
	nextID  int
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byPayID: make(map[string]models.PaymentRecord)}
}

func (s *fakePaymentStore) CreatePayment(_ context.Context, record models.PaymentRecord) (models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byPayID[record.PaymentID]; exists {
		return models.PaymentRecord{}, models.ErrDuplicatePayment
	}
	s.nextID++
	record.ID = s.nextID
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.byPayID[record.PaymentID] = record
	return record, nil
}

func (s *fakePaymentStore) GetBySubscriptionID(_ context.Context, subscriptionID string) (models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.byPayID {
		if r.SubscriptionID == subscriptionID {
			return r, nil
		}
	}
	return models.PaymentRecord{}, models.ErrPaymentRecordMissing
}

func (s *fakePaymentStore) DeleteBySubscriptionID(_ context.Context, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.byPayID {
		if r.SubscriptionID == subscriptionID {
			delete(s.byPayID, k)
		}
	}
	return nil
}

type fakeGateway struct {
	mu          sync.Mutex
	created     int
	cancelled   []string
	refunded    []string
	createdPlan string
	cancelErr   error
}

func (g *fakeGateway) CreateSubscription(_ context.Context, planID string, totalCount int, customerNotify bool) (*GatewaySubscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created++
	g.createdPlan = planID
	return &GatewaySubscription{ID: "sub_test_1", Status: "created"}, nil
}

func (g *fakeGateway) CancelSubscription(_ context.Context, subscriptionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, subscriptionID)
	return nil
}

func (g *fakeGateway) RefundPayment(_ context.Context, paymentID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunded = append(g.refunded, paymentID)
	return nil
}

func (g *fakeGateway) Key() string { return "rzp_test_key" }

func (g *fakeGateway) refundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.refunded)
}

// serialLocker is a process-local stand-in for the Redis locker.
type serialLocker struct {
	mu sync.Map
}

func (l *serialLocker) Acquire(_ context.Context, userID int, _ time.Duration) (func(), bool, error) {
	m, _ := l.mu.LoadOrStore(userID, &sync.Mutex{})
	mtx := m.(*sync.Mutex)
	mtx.Lock()
	return mtx.Unlock, true, nil
}

const testSecret = "webhook-test-secret"

func subscribedUser(id int, subscriptionID, status string) models.User {
	return models.User{
		ID:           id,
		Name:         "Aruzhan",
		Email:        "aruzhan@example.com",
		Role:         models.RoleUser,
		Subscription: models.Subscription{ID: &subscriptionID, Status: &status},
	}
}

func newTestSubscriptionService(users *fakeUserStore, payments *fakePaymentStore, gw *fakeGateway) *SubscriptionService {
	return &SubscriptionService{
		Users:         users,
		Payments:      payments,
		Gateway:       gw,
		Locker:        &serialLocker{},
		PlanID:        "plan_test",
		WebhookSecret: []byte(testSecret),
		RefundDays:    7,
	}
}

func TestBuy_AdminRejected(t *testing.T) {
	users := newFakeUserStore(models.User{ID: 1, Role: models.RoleAdmin})
	svc := newTestSubscriptionService(users, newFakePaymentStore(), &fakeGateway{})

	_, err := svc.Buy(context.Background(), 1)
	if !errors.Is(err, models.ErrAdminCannotSubscribe) {
		t.Fatalf("err = %v, want ErrAdminCannotSubscribe", err)
	}
	if gw, _ := svc.Gateway.(*fakeGateway); gw.created != 0 {
		t.Errorf("gateway called %d times, want 0", gw.created)
	}
}

func TestBuy_StoresSubscriptionAndReturnsKey(t *testing.T) {
	users := newFakeUserStore(models.User{ID: 1, Role: models.RoleUser})
	gw := &fakeGateway{}
	svc := newTestSubscriptionService(users, newFakePaymentStore(), gw)

	res, err := svc.Buy(context.Background(), 1)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if res.SubscriptionID != "sub_test_1" || res.Key != "rzp_test_key" {
		t.Errorf("unexpected result %+v", res)
	}
	if gw.createdPlan != "plan_test" {
		t.Errorf("plan sent = %q", gw.createdPlan)
	}

	u, _ := users.GetUserByID(context.Background(), 1)
	if u.Subscription.ID == nil || *u.Subscription.ID != "sub_test_1" {
		t.Errorf("subscription not stored on user: %+v", u.Subscription)
	}
	if u.Subscription.Status == nil || *u.Subscription.Status != models.SubscriptionStatusCreated {
		t.Errorf("status = %v, want created", u.Subscription.Status)
	}
}

func TestVerifyCallback_ValidSignatureActivates(t *testing.T) {
	users := newFakeUserStore(subscribedUser(1, "sub_test_1", models.SubscriptionStatusCreated))
	payments := newFakePaymentStore()
	svc := newTestSubscriptionService(users, payments, &fakeGateway{})

	var changed, activated bool
	svc.Events = SubscriptionEvents{
		SubscriptionChanged: func() { changed = true },
		Activated:           func(userID int) { activated = userID == 1 },
	}

	sig := pay.Sign("pay_1", "sub_test_1", []byte(testSecret))
	ref, err := svc.VerifyCallback(context.Background(), 1, "pay_1", sig)
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if ref != "pay_1" {
		t.Errorf("reference = %q, want pay_1", ref)
	}

	u, _ := users.GetUserByID(context.Background(), 1)
	if u.Subscription.Status == nil || *u.Subscription.Status != models.SubscriptionStatusActive {
		t.Errorf("status = %v, want active", u.Subscription.Status)
	}
	if _, err := payments.GetBySubscriptionID(context.Background(), "sub_test_1"); err != nil {
		t.Errorf("payment record missing: %v", err)
	}
	if !changed || !activated {
		t.Errorf("events fired: changed=%v activated=%v", changed, activated)
	}
}

func TestVerifyCallback_TamperedSignatureRejected(t *testing.T) {
	users := newFakeUserStore(subscribedUser(1, "sub_test_1", models.SubscriptionStatusCreated))
	payments := newFakePaymentStore()
	svc := newTestSubscriptionService(users, payments, &fakeGateway{})

	sig := pay.Sign("pay_other", "sub_test_1", []byte(testSecret))
	_, err := svc.VerifyCallback(context.Background(), 1, "pay_1", sig)
	if !errors.Is(err, models.ErrInvalidPaymentSignature) {
		t.Fatalf("err = %v, want ErrInvalidPaymentSignature", err)
	}

	if _, err := payments.GetBySubscriptionID(context.Background(), "sub_test_1"); !errors.Is(err, models.ErrPaymentRecordMissing) {
		t.Error("payment must not be recorded on signature mismatch")
	}
	u, _ := users.GetUserByID(context.Background(), 1)
	if *u.Subscription.Status != models.SubscriptionStatusCreated {
		t.Error("status must not change on signature mismatch")
	}
}

func TestVerifyCallback_ReplayRejected(t *testing.T) {
	users := newFakeUserStore(subscribedUser(1, "sub_test_1", models.SubscriptionStatusCreated))
	svc := newTestSubscriptionService(users, newFakePaymentStore(), &fakeGateway{})

	sig := pay.Sign("pay_1", "sub_test_1", []byte(testSecret))
	if _, err := svc.VerifyCallback(context.Background(), 1, "pay_1", sig); err != nil {
		t.Fatalf("first callback: %v", err)
	}
	_, err := svc.VerifyCallback(context.Background(), 1, "pay_1", sig)
	if !errors.Is(err, models.ErrDuplicatePayment) {
		t.Fatalf("replay err = %v, want ErrDuplicatePayment", err)
	}
}

func TestVerifyCallback_NoSubscription(t *testing.T) {
	users := newFakeUserStore(models.User{ID: 1, Role: models.RoleUser})
	svc := newTestSubscriptionService(users, newFakePaymentStore(), &fakeGateway{})

	_, err := svc.VerifyCallback(context.Background(), 1, "pay_1", "00")
	if !errors.Is(err, models.ErrNoActiveSubscription) {
		t.Fatalf("err = %v, want ErrNoActiveSubscription", err)
	}
}

func TestCancel_InsideRefundWindow(t *testing.T) {
	users := newFakeUserStore(subscribedUser(1, "sub_test_1", models.SubscriptionStatusActive))
	payments := newFakePaymentStore()
	gw := &fakeGateway{}
	svc := newTestSubscriptionService(users, payments, gw)

	_, _ = payments.CreatePayment(context.Background(), models.PaymentRecord{
		PaymentID:      "pay_1",
		SubscriptionID: "sub_test_1",
		CreatedAt:      time.Now().Add(-3 * 24 * time.Hour),
	})

	msg, err := svc.Cancel(context.Background(), 1)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !strings.Contains(msg, "refunded within 7 days") {
		t.Errorf("message = %q", msg)
	}
	if gw.refundCount() != 1 {
		t.Errorf("refunds = %d, want 1", gw.refundCount())
	}

	u, _ := users.GetUserByID(context.Background(), 1)
	if u.Subscription.ID != nil {
		t.Error("subscription not cleared")
	}
	if _, err := payments.GetBySubscriptionID(context.Background(), "sub_test_1"); !errors.Is(err, models.ErrPaymentRecordMissing) {
		t.Error("payment record not deleted")
	}
}

func TestCancel_OutsideRefundWindow(t *testing.T) {
	users := newFakeUserStore(subscribedUser(1, "sub_test_1", models.SubscriptionStatusActive))
	payments := newFakePaymentStore()
	gw := &fakeGateway{}
	svc := newTestSubscriptionService(users, payments, gw)

	_, _ = payments.CreatePayment(context.Background(), models.PaymentRecord{
		PaymentID:      "pay_1",
		SubscriptionID: "sub_test_1",
		CreatedAt:      time.Now().Add(-10 * 24 * time.Hour),
	})

	msg, err := svc.Cancel(context.Background(), 1)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !strings.Contains(msg, "No refund will be initiated") {
		t.Errorf("message = %q", msg)
	}
	if gw.refundCount() != 0 {
		t.Errorf("refunds = %d, want 0", gw.refundCount())
	}
}

func TestCancel_NoSubscription(t *testing.T) {
	users := newFakeUserStore(models.User{ID: 1, Role: models.RoleUser})
	svc := newTestSubscriptionService(users, newFakePaymentStore(), &fakeGateway{})

	_, err := svc.Cancel(context.Background(), 1)
	if !errors.Is(err, models.ErrNoActiveSubscription) {
		t.Fatalf("err = %v, want ErrNoActiveSubscription", err)
	}
}

// Two cancellations racing for one user must refund at most once: the loser
// either waits out the lock and finds the subscription gone, or loses the
// conditional clear.
func TestCancel_ConcurrentRefundsOnce(t *testing.T) {
	users := newFakeUserStore(subscribedUser(1, "sub_test_1", models.SubscriptionStatusActive))
	payments := newFakePaymentStore()
	gw := &fakeGateway{}
	svc := newTestSubscriptionService(users, payments, gw)

	_, _ = payments.CreatePayment(context.Background(), models.PaymentRecord{
		PaymentID:      "pay_1",
		SubscriptionID: "sub_test_1",
		CreatedAt:      time.Now(),
	})

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Cancel(context.Background(), 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrNoActiveSubscription),
			errors.Is(err, models.ErrPaymentRecordMissing),
			errors.Is(err, models.ErrCancelInProgress):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("successful cancels = %d, want exactly 1", succeeded)
	}
	if gw.refundCount() != 1 {
		t.Errorf("refunds = %d, want exactly 1", gw.refundCount())
	}
}
