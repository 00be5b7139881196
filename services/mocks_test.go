package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/stripe"
)

type mockCartRepo struct {
	mu         sync.Mutex
	cart       models.Cart
	nextItemID uint
	err        error
}

func newMockCartRepo(userID string) *mockCartRepo {
	return &mockCartRepo{
		cart:       models.Cart{CartID: 1, UserID: userID},
		nextItemID: 1,
	}
}

func (m *mockCartRepo) GetOrCreate(_ context.Context, userID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return &models.Cart{CartID: m.cart.CartID, UserID: userID}, nil
}

func (m *mockCartRepo) GetWithItems(_ context.Context, userID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	cart := m.cart
	cart.Items = append([]models.CartItem(nil), m.cart.Items...)
	return &cart, nil
}

func (m *mockCartRepo) FindItemByProduct(_ context.Context, cartID, productID uint) (*models.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, item := range m.cart.Items {
		if item.CartID == cartID && item.ProductID == productID {
			found := item
			return &found, nil
		}
	}
	return nil, ErrLineNotFound
}

func (m *mockCartRepo) InsertItem(_ context.Context, item *models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	item.ID = m.nextItemID
	m.nextItemID++
	m.cart.Items = append(m.cart.Items, *item)
	return nil
}

func (m *mockCartRepo) UpdateItemQuantity(_ context.Context, cartID, itemID uint, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i := range m.cart.Items {
		if m.cart.Items[i].CartID == cartID && m.cart.Items[i].ID == itemID {
			m.cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return ErrLineNotFound
}

func (m *mockCartRepo) DeleteItem(_ context.Context, cartID, itemID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, item := range m.cart.Items {
		if item.CartID == cartID && item.ID == itemID {
			m.cart.Items = append(m.cart.Items[:i], m.cart.Items[i+1:]...)
			return nil
		}
	}
	// Absent line: removing twice is fine.
	return nil
}

func (m *mockCartRepo) DeleteAllItems(_ context.Context, cartID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart.Items = nil
	return nil
}

type mockProductRepo struct {
	products map[uint]models.Product
}

func (m *mockProductRepo) ByID(_ context.Context, id uint) (*models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// mockCartCache is a pass-through cache so service tests always hit the repo.
type mockCartCache struct {
	mu      sync.Mutex
	deletes int
	err     error
}

func (m *mockCartCache) Get(context.Context, string) (*models.Cart, error) {
	return nil, ErrCacheMiss
}

func (m *mockCartCache) Set(context.Context, string, *models.Cart) error {
	return m.err
}

func (m *mockCartCache) Delete(context.Context, string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	return m.err
}

type mockOrderRepo struct {
	mu          sync.Mutex
	orders      map[string]*models.Order
	transitions int
	createErr   error
	err         error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*models.Order)}
}

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[order.OrderRef] = copyOrder(order)
	return nil
}

func (m *mockOrderRepo) ByRef(_ context.Context, orderRef string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	order, ok := m.orders[orderRef]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (m *mockOrderRepo) ByRefForUser(_ context.Context, userID, orderRef string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	order, ok := m.orders[orderRef]
	if !ok || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (m *mockOrderRepo) ByUser(_ context.Context, userID string, filter OrderFilter) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var result []models.Order
	for _, order := range m.orders {
		if order.UserID != userID {
			continue
		}
		if filter.Status != "" && string(order.Status) != filter.Status {
			continue
		}
		result = append(result, *copyOrder(order))
	}
	return result, nil
}

func (m *mockOrderRepo) All(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []models.Order
	for _, order := range m.orders {
		result = append(result, *copyOrder(order))
	}
	return result, nil
}

func (m *mockOrderRepo) AttachSession(_ context.Context, orderRef, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	order, ok := m.orders[orderRef]
	if !ok {
		return ErrOrderNotFound
	}
	order.StripeSessionID = sessionID
	return nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, orderRef, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	order, ok := m.orders[orderRef]
	if !ok {
		return false, nil
	}
	if order.Status != models.OrderStatusUnpaid {
		return false, nil
	}
	order.Status = models.OrderStatusPaid
	order.StripeSessionID = sessionID
	m.transitions++
	return true, nil
}

type mockGateway struct {
	mu          sync.Mutex
	sessions    map[string]*stripe.CheckoutSession
	createCalls []stripe.CheckoutParams
	nextID      int
	createErr   error
	retrieveErr error
}

func newMockGateway() *mockGateway {
	return &mockGateway{sessions: make(map[string]*stripe.CheckoutSession)}
}

func (m *mockGateway) CreateCheckoutSession(_ context.Context, p stripe.CheckoutParams) (*stripe.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.createCalls = append(m.createCalls, p)
	m.nextID++
	session := &stripe.CheckoutSession{
		ID:            fmt.Sprintf("cs_test_%d", m.nextID),
		URL:           fmt.Sprintf("https://checkout.stripe.test/c/pay/cs_test_%d", m.nextID),
		PaymentStatus: stripe.PaymentStatusUnpaid,
		Metadata:      map[string]string{"orderId": p.OrderID},
	}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *mockGateway) RetrieveSession(_ context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.retrieveErr != nil {
		return nil, m.retrieveErr
	}
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, &stripe.APIError{StatusCode: 404, Message: "No such checkout session"}
	}
	cp := *session
	return &cp, nil
}

// markSessionPaid flips the processor-side status, simulating settlement.
func (m *mockGateway) markSessionPaid(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[sessionID]; ok {
		session.PaymentStatus = stripe.PaymentStatusPaid
	}
}

// seedSession injects a session that was not created through the gateway mock.
func (m *mockGateway) seedSession(session *stripe.CheckoutSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

type mockMailer struct {
	mu   sync.Mutex
	sent []string // recipient addresses, one per delivery
	err  error
}

func (m *mockMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *mockMailer) deliveries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockNotifier struct {
	mu   sync.Mutex
	paid []string // order refs
}

func (m *mockNotifier) OrderPaid(order *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paid = append(m.paid, order.OrderRef)
}

func (m *mockNotifier) events() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.paid)
}
