package order

import (
	"context"
	"sync"

	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/address"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/order"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/product"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/user"
	"github.com/sixxson/coffee-craft-service-sub000/internal/domain/voucher"
	apperrors "github.com/sixxson/coffee-craft-service-sub000/pkg/errors"
)

// memStore 内存版"数据库",实现全部仓储接口与TxManager
// 说明:
// 1. Lock*系列返回行的拷贝,模拟数据库把行读入内存的语义
// 2. Transaction在出错时恢复快照,模拟事务回滚
// 3. 库存/使用次数走条件更新,与MySQL实现保持同一套失败语义
type memStore struct {
	mu sync.Mutex

	products  map[uint]*product.Product
	variants  map[uint]*product.Variant
	vouchers  map[uint]*voucher.Voucher
	addresses map[uint]*address.Address
	users     map[uint]*user.User
	orders    map[uint]*order.Order
	histories []*order.History

	nextOrderID   uint
	nextHistoryID uint

	// lastListInTx 记录最近一次List调用是否发生在事务上下文内
	lastListInTx bool
}

// txMarker 模拟MySQL实现把*gorm.DB事务句柄放进context的做法
type txMarker struct{}

func newMemStore() *memStore {
	return &memStore{
		products:    make(map[uint]*product.Product),
		variants:    make(map[uint]*product.Variant),
		vouchers:    make(map[uint]*voucher.Voucher),
		addresses:   make(map[uint]*address.Address),
		users:       make(map[uint]*user.User),
		orders:      make(map[uint]*order.Order),
		nextOrderID: 1,
	}
}

// ---------- TxManager ----------

type snapshot struct {
	products  map[uint]*product.Product
	variants  map[uint]*product.Variant
	vouchers  map[uint]*voucher.Voucher
	orders    map[uint]*order.Order
	histories []*order.History
	nextID    uint
}

func (s *memStore) takeSnapshot() snapshot {
	snap := snapshot{
		products:  make(map[uint]*product.Product, len(s.products)),
		variants:  make(map[uint]*product.Variant, len(s.variants)),
		vouchers:  make(map[uint]*voucher.Voucher, len(s.vouchers)),
		orders:    make(map[uint]*order.Order, len(s.orders)),
		histories: append([]*order.History(nil), s.histories...),
		nextID:    s.nextOrderID,
	}
	for id, p := range s.products {
		cp := *p
		snap.products[id] = &cp
	}
	for id, v := range s.variants {
		cv := *v
		snap.variants[id] = &cv
	}
	for id, v := range s.vouchers {
		cv := *v
		snap.vouchers[id] = &cv
	}
	for id, o := range s.orders {
		snap.orders[id] = copyOrder(o)
	}
	return snap
}

func (s *memStore) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snap := s.takeSnapshot()
	s.mu.Unlock()

	txCtx := context.WithValue(ctx, txMarker{}, true)
	if err := fn(txCtx); err != nil {
		// 回滚
		s.mu.Lock()
		s.products = snap.products
		s.variants = snap.variants
		s.vouchers = snap.vouchers
		s.orders = snap.orders
		s.histories = snap.histories
		s.nextOrderID = snap.nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.OrderItem(nil), o.Items...)
	return &cp
}

// ---------- product.Repository ----------

func (s *memStore) FindProductByID(ctx context.Context, id uint) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeProductNotFound, "商品[%d]不存在", id)
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) LockByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[uint]*product.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			cp := *p
			result[id] = &cp
		}
	}
	return result, nil
}

func (s *memStore) LockVariantsByIDs(ctx context.Context, ids []uint) (map[uint]*product.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[uint]*product.Variant, len(ids))
	for _, id := range ids {
		if v, ok := s.variants[id]; ok {
			cv := *v
			result[id] = &cv
		}
	}
	return result, nil
}

func (s *memStore) UpdateStock(ctx context.Context, id uint, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return apperrors.Newf(apperrors.ErrCodeProductNotFound, "商品[%d]不存在", id)
	}
	if p.Stock+delta < 0 {
		return apperrors.Newf(apperrors.ErrCodeInsufficientStock, "商品《%s》库存不足", p.Name)
	}
	p.Stock += delta
	return nil
}

func (s *memStore) UpdateVariantStock(ctx context.Context, id uint, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return apperrors.Newf(apperrors.ErrCodeVariantNotFound, "商品规格[%d]不存在", id)
	}
	if v.Stock+delta < 0 {
		return apperrors.Newf(apperrors.ErrCodeInsufficientStock, "规格《%s》库存不足", v.Name)
	}
	v.Stock += delta
	return nil
}

// productRepo 适配器:memStore的FindProductByID与接口方法名对齐
type productRepo struct{ *memStore }

func (r productRepo) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	return r.FindProductByID(ctx, id)
}

// ---------- voucher.Repository ----------

type voucherRepo struct{ *memStore }

func (r voucherRepo) FindByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	return r.LockByCode(ctx, code)
}

func (r voucherRepo) LockByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vouchers {
		if v.Code == code {
			cv := *v
			return &cv, nil
		}
	}
	return nil, voucher.ErrVoucherNotFound
}

func (r voucherRepo) FindByID(ctx context.Context, id uint) (*voucher.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[id]
	if !ok {
		return nil, voucher.ErrVoucherNotFound
	}
	cv := *v
	return &cv, nil
}

func (r voucherRepo) IncrementUsage(ctx context.Context, id uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vouchers[id]
	if !ok {
		return voucher.ErrVoucherNotFound
	}
	next := v.UsedCount + delta
	if next < 0 {
		next = 0
	}
	if delta > 0 && v.UsageLimit != nil && next > *v.UsageLimit {
		return apperrors.Newf(apperrors.ErrCodeVoucherInvalid, "优惠券[%s]已被领完", v.Code)
	}
	v.UsedCount = next
	return nil
}

// ---------- address.Repository ----------

type addressRepo struct{ *memStore }

func (r addressRepo) Create(ctx context.Context, addr *address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addresses[addr.ID] = addr
	return nil
}

func (r addressRepo) FindByID(ctx context.Context, id uint) (*address.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.addresses[id]
	if !ok {
		return nil, address.ErrAddressNotFound
	}
	return a, nil
}

func (r addressRepo) ListByUserID(ctx context.Context, userID uint) ([]*address.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*address.Address
	for _, a := range r.addresses {
		if a.UserID == userID {
			result = append(result, a)
		}
	}
	return result, nil
}

// ---------- user.Repository ----------

type userRepo struct{ *memStore }

func (r userRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r userRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

// ---------- order.Repository ----------

type orderRepo struct{ *memStore }

func (r orderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.nextOrderID
	r.nextOrderID++
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r orderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r orderRepo) FindByIDForUser(ctx context.Context, id, userID uint) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.UserID != userID {
		return nil, order.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r orderRepo) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r orderRepo) Update(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.orders[o.ID] = copyOrder(o)
	return nil
}

func (r orderRepo) ListByUserID(ctx context.Context, userID uint) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			result = append(result, copyOrder(o))
		}
	}
	return result, nil
}

func (r orderRepo) List(ctx context.Context, params order.ListParams) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastListInTx = ctx.Value(txMarker{}) != nil
	var result []*order.Order
	for _, o := range r.orders {
		if params.Status != "" && o.Status != params.Status {
			continue
		}
		if params.PaymentStatus != "" && o.PaymentStatus != params.PaymentStatus {
			continue
		}
		if len(params.UserIDs) > 0 {
			matched := false
			for _, uid := range params.UserIDs {
				if o.UserID == uid {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		result = append(result, copyOrder(o))
	}
	return result, int64(len(result)), nil
}

// ---------- order.HistoryRepository ----------

type historyRepo struct{ *memStore }

func (r historyRepo) Append(ctx context.Context, h *order.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextHistoryID++
	h.ID = r.nextHistoryID
	r.histories = append(r.histories, h)
	return nil
}

func (r historyRepo) ListByOrderID(ctx context.Context, orderID uint) ([]*order.History, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*order.History
	for _, h := range r.histories {
		if h.OrderID == orderID {
			result = append(result, h)
		}
	}
	return result, nil
}

// ---------- Notifier ----------

// recordingNotifier 记录事务提交后的通知调用
type recordingNotifier struct {
	created  []*order.Order
	canceled []*order.Order
}

func (n *recordingNotifier) OrderCreated(ctx context.Context, o *order.Order) {
	n.created = append(n.created, o)
}

func (n *recordingNotifier) OrderCanceled(ctx context.Context, o *order.Order) {
	n.canceled = append(n.canceled, o)
}
