package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-dashboard/internal/live"
	"github.com/iyhunko/inventory-dashboard/internal/model"
	"github.com/iyhunko/inventory-dashboard/internal/repository"
)

var errInjected = errors.New("injected failure")

// memDB is an in-memory stand-in for Postgres. Transactions are serialised and restore a
// snapshot of every table when fn fails.
type memDB struct {
	mu        sync.Mutex
	products  map[uuid.UUID]model.Product
	sales     []model.Sale
	dashboard map[uuid.UUID]model.DashboardProduct
	events    []model.Event
	history   []model.ProductHistory
	users     map[string]model.User

	// fail makes the named operation (e.g. "events.create") return errInjected.
	fail map[string]bool
}

func newMemDB() *memDB {
	return &memDB{
		products:  map[uuid.UUID]model.Product{},
		dashboard: map[uuid.UUID]model.DashboardProduct{},
		users:     map[string]model.User{},
		fail:      map[string]bool{},
	}
}

type memSnapshot struct {
	products  map[uuid.UUID]model.Product
	sales     []model.Sale
	dashboard map[uuid.UUID]model.DashboardProduct
	events    []model.Event
}

func (db *memDB) snapshot() memSnapshot {
	s := memSnapshot{
		products:  make(map[uuid.UUID]model.Product, len(db.products)),
		sales:     append([]model.Sale(nil), db.sales...),
		dashboard: make(map[uuid.UUID]model.DashboardProduct, len(db.dashboard)),
		events:    append([]model.Event(nil), db.events...),
	}
	for k, v := range db.products {
		s.products[k] = v
	}
	for k, v := range db.dashboard {
		s.dashboard[k] = v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.products = s.products
	db.sales = s.sales
	db.dashboard = s.dashboard
	db.events = s.events
}

// WithinTransaction implements repository.Transactor.
func (db *memDB) WithinTransaction(ctx context.Context, fn func(store repository.Store) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	saved := db.snapshot()
	if err := fn(memStore{db: db, inTx: true}); err != nil {
		db.restore(saved)
		return err
	}
	return nil
}

// Store returns repositories working outside any transaction.
func (db *memDB) Store() memStore {
	return memStore{db: db}
}

func (db *memDB) failing(op string) error {
	if db.fail[op] {
		return errInjected
	}
	return nil
}

func (db *memDB) product(id uuid.UUID) (model.Product, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.products[id]
	return p, ok
}

func (db *memDB) snapshotOf(originalID uuid.UUID) (model.DashboardProduct, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.dashboard[originalID]
	return d, ok
}

func (db *memDB) counts() (sales, events, history int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sales), len(db.events), len(db.history)
}

type memStore struct {
	db   *memDB
	inTx bool
}

func (s memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.db.mu.Lock()
	return s.db.mu.Unlock
}

func (s memStore) Products() repository.ProductRepository { return memProducts(s) }
func (s memStore) Sales() repository.SaleRepository { return memSales(s) }
func (s memStore) Dashboard() repository.DashboardRepository { return memDashboard(s) }
func (s memStore) Events() repository.EventRepository { return memEvents(s) }
func (s memStore) History() repository.HistoryRepository { return memHistory(s) }
func (s memStore) Reports() repository.ReportRepository { return memReports(s) }
func (s memStore) Users() repository.UserRepository { return memUsers(s) }

type memProducts memStore

func (r memProducts) Create(_ context.Context, p *model.Product) (*model.Product, error) {
	defer memStore(r).lock()()
	if err := r.db.failing("products.create"); err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		p.InitMeta()
	}
	r.db.products[p.ID] = cloneProduct(*p)
	return p, nil
}

func (r memProducts) FindByID(_ context.Context, owner string, id uuid.UUID) (*model.Product, error) {
	defer memStore(r).lock()()
	p, ok := r.db.products[id]
	if !ok || p.Owner != owner {
		return nil, repository.ErrNotFound
	}
	c := cloneProduct(p)
	return &c, nil
}

func (r memProducts) FindByIDForUpdate(ctx context.Context, owner string, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, owner, id)
}

func (r memProducts) List(_ context.Context, query repository.Query) ([]*model.Product, error) {
	defer memStore(r).lock()()
	owner := query.Get(repository.OwnerField)
	description := strings.ToLower(query.Get(repository.DescriptionField))
	var categories []string
	if raw := query.Get(repository.CategoriesField); raw != "" {
		categories = strings.Split(raw, ",")
	}

	var out []*model.Product
	for _, p := range r.db.products {
		if p.Owner != owner || !strings.Contains(strings.ToLower(p.Description), description) {
			continue
		}
		if len(categories) > 0 && !overlaps(p.Categories, categories) {
			continue
		}
		c := cloneProduct(p)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memProducts) Update(_ context.Context, p *model.Product) error {
	defer memStore(r).lock()()
	if err := r.db.failing("products.update"); err != nil {
		return err
	}
	existing, ok := r.db.products[p.ID]
	if !ok || existing.Owner != p.Owner {
		return repository.ErrNotFound
	}
	r.db.products[p.ID] = cloneProduct(*p)
	return nil
}

func (r memProducts) DeleteByID(_ context.Context, owner string, id uuid.UUID) error {
	defer memStore(r).lock()()
	if err := r.db.failing("products.delete"); err != nil {
		return err
	}
	existing, ok := r.db.products[id]
	if !ok || existing.Owner != owner {
		return repository.ErrNotFound
	}
	delete(r.db.products, id)
	return nil
}

func (r memProducts) ListCategories(_ context.Context, owner string) ([]string, error) {
	defer memStore(r).lock()()
	set := map[string]struct{}{}
	for _, p := range r.db.products {
		if p.Owner != owner {
			continue
		}
		for _, c := range p.Categories {
			set[c] = struct{}{}
		}
	}
	out := []string{}
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r memProducts) RepriceUSD(_ context.Context, rate float64) (int64, error) {
	defer memStore(r).lock()()
	if err := r.db.failing("products.reprice"); err != nil {
		return 0, err
	}
	for id, p := range r.db.products {
		p.PriceUSD = model.USDPrice(p.PriceBRL, rate)
		r.db.products[id] = p
	}
	return int64(len(r.db.products)), nil
}

type memSales memStore

func (r memSales) Create(_ context.Context, sale *model.Sale) (*model.Sale, error) {
	defer memStore(r).lock()()
	if err := r.db.failing("sales.create"); err != nil {
		return nil, err
	}
	if sale.ID == uuid.Nil {
		sale.InitMeta()
	}
	r.db.sales = append(r.db.sales, *sale)
	return sale, nil
}

func (r memSales) List(_ context.Context, query repository.Query) ([]*model.Sale, error) {
	defer memStore(r).lock()()
	owner := query.Get(repository.OwnerField)
	var out []*model.Sale
	for i := len(r.db.sales) - 1; i >= 0; i-- {
		s := r.db.sales[i]
		if s.Owner != owner {
			continue
		}
		if query.Paginator != nil && !s.SaleDate.Before(query.Paginator.LastTimestamp) {
			continue
		}
		out = append(out, &s)
		if query.Limit > 0 && len(out) == query.Limit {
			break
		}
	}
	return out, nil
}

func (r memSales) DeleteByOwner(_ context.Context, owner string) (int64, error) {
	defer memStore(r).lock()()
	kept := r.db.sales[:0]
	var deleted int64
	for _, s := range r.db.sales {
		if s.Owner == owner {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	r.db.sales = kept
	return deleted, nil
}

type memDashboard memStore

func (r memDashboard) FindByOriginalID(_ context.Context, owner string, originalID uuid.UUID) (*model.DashboardProduct, error) {
	defer memStore(r).lock()()
	d, ok := r.db.dashboard[originalID]
	if !ok || d.Owner != owner {
		return nil, repository.ErrNotFound
	}
	d.Categories = append([]string(nil), d.Categories...)
	return &d, nil
}

func (r memDashboard) Create(_ context.Context, d *model.DashboardProduct) (*model.DashboardProduct, error) {
	defer memStore(r).lock()()
	if err := r.db.failing("dashboard.create"); err != nil {
		return nil, err
	}
	if d.ID == uuid.Nil {
		d.InitMeta()
	}
	r.db.dashboard[d.OriginalID] = *d
	return d, nil
}

func (r memDashboard) Update(_ context.Context, d *model.DashboardProduct) error {
	defer memStore(r).lock()()
	if err := r.db.failing("dashboard.update"); err != nil {
		return err
	}
	if _, ok := r.db.dashboard[d.OriginalID]; !ok {
		return repository.ErrNotFound
	}
	r.db.dashboard[d.OriginalID] = *d
	return nil
}

func (r memDashboard) List(_ context.Context, owner string, showInactive bool) ([]*model.DashboardProduct, error) {
	defer memStore(r).lock()()
	var out []*model.DashboardProduct
	for _, d := range r.db.dashboard {
		if d.Owner != owner || (!showInactive && !d.IsActive) {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdate.After(out[j].LastUpdate) })
	return out, nil
}

func (r memDashboard) RepriceUSD(_ context.Context, rate float64) (int64, error) {
	defer memStore(r).lock()()
	for id, d := range r.db.dashboard {
		d.PriceUSD = model.USDPrice(d.PriceBRL, rate)
		r.db.dashboard[id] = d
	}
	return int64(len(r.db.dashboard)), nil
}

type memEvents memStore

func (r memEvents) Create(_ context.Context, event *model.Event) (*model.Event, error) {
	defer memStore(r).lock()()
	if err := r.db.failing("events.create"); err != nil {
		return nil, err
	}
	event.InitMeta()
	r.db.events = append(r.db.events, *event)
	return event, nil
}

func (r memEvents) ListPending(_ context.Context, limit int) ([]*model.Event, error) {
	defer memStore(r).lock()()
	var out []*model.Event
	for _, e := range r.db.events {
		if e.Status != model.EventStatusPending {
			continue
		}
		e := e
		out = append(out, &e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memEvents) UpdateStatus(_ context.Context, id uuid.UUID, status model.EventStatus) error {
	defer memStore(r).lock()()
	for i := range r.db.events {
		if r.db.events[i].ID == id {
			r.db.events[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

type memHistory memStore

func (r memHistory) Create(_ context.Context, entry *model.ProductHistory) (*model.ProductHistory, error) {
	defer memStore(r).lock()()
	if err := r.db.failing("history.create"); err != nil {
		return nil, err
	}
	if entry.ID == uuid.Nil {
		entry.InitMeta()
	}
	r.db.history = append(r.db.history, *entry)
	return entry, nil
}

func (r memHistory) List(_ context.Context, query repository.Query) ([]*model.ProductHistory, error) {
	defer memStore(r).lock()()
	owner := query.Get(repository.OwnerField)
	productID := query.Get(repository.ProductIDField)
	action := query.Get(repository.ActionField)

	var out []*model.ProductHistory
	for i := len(r.db.history) - 1; i >= 0; i-- {
		h := r.db.history[i]
		if h.Owner != owner ||
			(productID != "" && h.OriginalID.String() != productID) ||
			(action != "" && string(h.Action) != action) {
			continue
		}
		out = append(out, &h)
		if len(out) == query.Limit {
			break
		}
	}
	return out, nil
}

type memReports memStore

func (r memReports) SaleLines(_ context.Context, query repository.Query) ([]model.SaleLine, error) {
	defer memStore(r).lock()()
	owner := query.Get(repository.OwnerField)
	var out []model.SaleLine
	for _, s := range r.db.sales {
		if s.Owner != owner {
			continue
		}
		if (query.From != nil && s.SaleDate.Before(*query.From)) || (query.To != nil && s.SaleDate.After(*query.To)) {
			continue
		}
		line := model.SaleLine{
			SaleID:    s.ID,
			ProductID: s.ProductID,
			Quantity:  s.Quantity,
			ValueBRL:  s.SaleValueBRL,
			SaleDate:  s.SaleDate,
		}
		if d, ok := r.db.dashboard[s.ProductID]; ok && d.Owner == owner {
			line.Description = d.Description
			line.Categories = append([]string(nil), d.Categories...)
		}
		out = append(out, line)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SaleDate.Before(out[j].SaleDate) })
	return out, nil
}

type memUsers memStore

func (r memUsers) Create(_ context.Context, user *model.User) (*model.User, error) {
	defer memStore(r).lock()()
	if _, ok := r.db.users[user.Username]; ok {
		return nil, &repository.UniqueConstraintError{Detail: "users_username_key"}
	}
	if user.ID == uuid.Nil {
		user.InitMeta()
	}
	r.db.users[user.Username] = *user
	return user, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	defer memStore(r).lock()()
	u, ok := r.db.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func cloneProduct(p model.Product) model.Product {
	p.Categories = append([]string(nil), p.Categories...)
	return p
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// fixedRate is a RateSource returning a constant.
type fixedRate float64

func (r fixedRate) Rate(context.Context) float64 { return float64(r) }

// sentMessage is one delivery recorded by recordingBroadcaster. Owner is empty for BroadcastAll.
type sentMessage struct {
	Owner   string
	Message live.Message
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, owner string, msg live.Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{Owner: owner, Message: msg})
	return 1
}

func (b *recordingBroadcaster) BroadcastAll(_ context.Context, msg live.Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{Message: msg})
	return 1
}

func (b *recordingBroadcaster) messages() []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]sentMessage(nil), b.sent...)
}
