package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"go.mongodb.org/mongo-driver/v2/bson"

	"digiread/internal/models"
	"digiread/internal/pdf"
	"digiread/internal/repositories"
	"digiread/internal/storage"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[bson.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[bson.ObjectID]*models.User{}} }

func (f *fakeUsers) put(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) get(id string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	u, ok := f.byID[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func clone(u *models.User) *models.User {
	c := *u
	c.Books = append([]bson.ObjectID(nil), u.Books...)
	return &c
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repositories.ErrDuplicate
		}
	}
	u.ID = bson.NewObjectID()
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	f.byID[u.ID] = clone(u)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	return clone(u), nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			return clone(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) MarkSignedUp(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.SignedUp = true
	return nil
}

func (f *fakeUsers) UpdateName(_ context.Context, id, name string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	u.Name, u.SignedUp = name, true
	return clone(u), nil
}

func (f *fakeUsers) SetAvatar(_ context.Context, id string, avatar *models.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	u.Avatar = avatar
	return nil
}

func (f *fakeUsers) PromoteToAuthor(_ context.Context, id string, authorID bson.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	u.Role, u.AuthorID = models.RoleAuthor, &authorID
	return clone(u), nil
}

func (f *fakeUsers) HasBook(_ context.Context, id, bookID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return false, nil
	}
	for _, b := range u.Books {
		if b.Hex() == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) AddBooks(_ context.Context, id string, bookIDs []bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, err := f.get(id)
	if err != nil {
		return err
	}
	for _, b := range bookIDs {
		dup := false
		for _, have := range u.Books {
			dup = dup || have == b
		}
		if !dup {
			u.Books = append(u.Books, b)
		}
	}
	return nil
}

type fakeTokens struct {
	mu       sync.Mutex
	byUserID map[string]*models.VerificationToken
	lookups  int
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byUserID: map[string]*models.VerificationToken{}}
}

func (f *fakeTokens) Replace(_ context.Context, t *models.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if old, ok := f.byUserID[t.UserID]; ok {
		t.ID = old.ID
	} else {
		t.ID = bson.NewObjectID()
	}
	c := *t
	f.byUserID[t.UserID] = &c
	return nil
}

func (f *fakeTokens) GetByUserID(_ context.Context, userID string) (*models.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	t, ok := f.byUserID[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTokens) DeleteByID(_ context.Context, id bson.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, t := range f.byUserID {
		if t.ID == id {
			delete(f.byUserID, k)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTokens) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byUserID)
}

type sentMail struct{ to, link, name string }

type fakeMail struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMail) SendVerificationLink(_ context.Context, to, link, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, link, name})
	return nil
}

func (f *fakeMail) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type storedObject struct {
	contentType string
	data        []byte
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	deleted []string
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]storedObject{}} }

func bucketKey(b storage.Bucket, key string) string {
	if b == storage.Private {
		return "private/" + key
	}
	return "public/" + key
}

func (f *fakeStore) Put(_ context.Context, b storage.Bucket, key, contentType string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucketKey(b, key)] = storedObject{contentType, data}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, b storage.Bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucketKey(b, key))
	f.deleted = append(f.deleted, bucketKey(b, key))
	return nil
}

func (f *fakeStore) SignedUploadURL(_ context.Context, key, contentType string) (string, error) {
	return "https://signed.example/put/" + key + "?ct=" + contentType, nil
}

func (f *fakeStore) SignedDownloadURL(_ context.Context, key string) (string, error) {
	return "https://signed.example/get/" + key, nil
}

func (f *fakeStore) PublicURL(key string) string { return "https://cdn.example/" + key }

type fakeAuthors struct {
	mu   sync.Mutex
	byID map[bson.ObjectID]*models.Author
}

func newFakeAuthors() *fakeAuthors { return &fakeAuthors{byID: map[bson.ObjectID]*models.Author{}} }

func (f *fakeAuthors) Create(_ context.Context, a *models.Author) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	c := *a
	f.byID[a.ID] = &c
	return nil
}

func (f *fakeAuthors) find(id string) (*models.Author, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	a, ok := f.byID[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return a, nil
}

func (f *fakeAuthors) GetByID(_ context.Context, id string) (*models.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return nil, err
	}
	c := *a
	return &c, nil
}

func (f *fakeAuthors) Update(_ context.Context, id string, name, about string, links []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return err
	}
	a.Name, a.About, a.SocialLinks = name, about, links
	return nil
}

func (f *fakeAuthors) UpdateName(_ context.Context, id, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return err
	}
	a.Name = name
	return nil
}

func (f *fakeAuthors) AddBook(_ context.Context, id string, bookID bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, err := f.find(id)
	if err != nil {
		return err
	}
	a.Books = append(a.Books, bookID)
	return nil
}

type fakeBooks struct {
	mu   sync.Mutex
	byID map[bson.ObjectID]*models.Book
	sold map[bson.ObjectID]int64
}

func newFakeBooks() *fakeBooks {
	return &fakeBooks{byID: map[bson.ObjectID]*models.Book{}, sold: map[bson.ObjectID]int64{}}
}

func (f *fakeBooks) Create(_ context.Context, b *models.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	c := *b
	f.byID[b.ID] = &c
	return nil
}

func (f *fakeBooks) Replace(_ context.Context, b *models.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[b.ID]; !ok {
		return repositories.ErrNotFound
	}
	c := *b
	f.byID[b.ID] = &c
	return nil
}

func (f *fakeBooks) GetByID(_ context.Context, id string) (*models.Book, error) {
	return f.findOne(func(b *models.Book) bool { return b.ID.Hex() == id })
}

func (f *fakeBooks) GetBySlug(_ context.Context, slug string) (*models.Book, error) {
	return f.findOne(func(b *models.Book) bool { return b.Slug == slug })
}

func (f *fakeBooks) GetBySlugAndAuthor(_ context.Context, slug string, author bson.ObjectID) (*models.Book, error) {
	return f.findOne(func(b *models.Book) bool { return b.Slug == slug && b.Author == author })
}

func (f *fakeBooks) findOne(match func(*models.Book) bool) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.byID {
		if match(b) {
			c := *b
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeBooks) ListByIDs(_ context.Context, ids []bson.ObjectID) ([]*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Book{}
	for _, id := range ids {
		if b, ok := f.byID[id]; ok {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeBooks) ListByGenre(_ context.Context, genre string, limit int64) ([]*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Book{}
	for _, b := range f.byID {
		if b.Genre == genre && int64(len(out)) < limit {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeBooks) SetAverageRating(_ context.Context, id bson.ObjectID, rating float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		b.AverageRating = &rating
	}
	return nil
}

func (f *fakeBooks) IncrementCopySold(_ context.Context, ids []bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.sold[id]++
	}
	return nil
}

type reviewKey struct{ book, user bson.ObjectID }

type fakeReviews struct {
	mu   sync.Mutex
	byID map[reviewKey]*models.Review
}

func newFakeReviews() *fakeReviews { return &fakeReviews{byID: map[reviewKey]*models.Review{}} }

func (f *fakeReviews) Upsert(_ context.Context, book, user bson.ObjectID, rating int, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[reviewKey{book, user}] = &models.Review{Book: book, User: user, Rating: rating, Content: content}
	return nil
}

func (f *fakeReviews) Get(_ context.Context, book, user bson.ObjectID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[reviewKey{book, user}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r, nil
}

func (f *fakeReviews) AverageRating(_ context.Context, book bson.ObjectID) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum, n := 0, 0
	for k, r := range f.byID {
		if k.book == book {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, repositories.ErrNotFound
	}
	return float64(sum) / float64(n), nil
}

type fakeHistories struct {
	mu   sync.Mutex
	byID map[reviewKey]*models.History
}

func newFakeHistories() *fakeHistories { return &fakeHistories{byID: map[reviewKey]*models.History{}} }

func (f *fakeHistories) Get(_ context.Context, reader, book bson.ObjectID) (*models.History, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.byID[reviewKey{book, reader}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *h
	c.Highlights = append([]models.Highlight(nil), h.Highlights...)
	return &c, nil
}

func (f *fakeHistories) Save(_ context.Context, h *models.History) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.ID.IsZero() {
		h.ID = bson.NewObjectID()
	}
	c := *h
	c.Highlights = append([]models.Highlight(nil), h.Highlights...)
	f.byID[reviewKey{h.Book, h.Reader}] = &c
	return nil
}

type fakeCarts struct {
	mu     sync.Mutex
	byUser map[bson.ObjectID]*models.Cart
}

func newFakeCarts() *fakeCarts { return &fakeCarts{byUser: map[bson.ObjectID]*models.Cart{}} }

func copyCart(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp
}

func (f *fakeCarts) GetByUserID(_ context.Context, user bson.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byUser[user]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyCart(c), nil
}

func (f *fakeCarts) GetByID(_ context.Context, id string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byUser {
		if c.ID.Hex() == id {
			return copyCart(c), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCarts) Save(_ context.Context, c *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	f.byUser[c.UserID] = copyCart(c)
	return nil
}

func (f *fakeCarts) Clear(_ context.Context, user bson.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byUser[user]; ok {
		c.Items = nil
	}
	return nil
}

type fakeOrders struct {
	mu    sync.Mutex
	byRef map[string]*models.Order
}

func newFakeOrders() *fakeOrders { return &fakeOrders{byRef: map[string]*models.Order{}} }

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = bson.NewObjectID()
	o.CreatedAt = time.Now()
	c := *o
	f.byRef[o.Reference] = &c
	return nil
}

func (f *fakeOrders) GetByReference(_ context.Context, ref string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byRef[ref]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (f *fakeOrders) byID(id bson.ObjectID) *models.Order {
	for _, o := range f.byRef {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, id bson.ObjectID, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.byID(id)
	if o == nil || o.Status == models.OrderPaid {
		return false, nil
	}
	o.Status, o.PaymentStatus = models.OrderPaid, status
	return true, nil
}

func (f *fakeOrders) MarkFailed(_ context.Context, id bson.ObjectID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o := f.byID(id); o != nil && o.Status == models.OrderPending {
		o.Status, o.PaymentStatus = models.OrderFailed, status
	}
	return nil
}

func (f *fakeOrders) SetReceipt(_ context.Context, id bson.ObjectID, receipt *models.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o := f.byID(id); o != nil {
		o.Receipt = receipt
	}
	return nil
}

type fakeSnap struct {
	req *snap.Request
	err *midtrans.Error
}

func (f *fakeSnap) CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &snap.Response{Token: "snap-token", RedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token"}, nil
}

type fakeReceipts struct {
	got []pdf.ReceiptData
	err error
}

func (f *fakeReceipts) GenerateReceipt(data pdf.ReceiptData) ([]byte, error) {
	f.got = append(f.got, data)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.3 fake"), nil
}
