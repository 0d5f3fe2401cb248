// Package store holds the canonical in-memory collections behind every view.
//
// ViewStore is a reducer: callers fetch snapshots from the backend and hand
// them to one of the entry points below, which merge them into the current
// state. It never performs I/O. Two rules apply to every listing mutation:
//
//   - merge, don't clobber: a field the incoming snapshot leaves nil or empty
//     is backfilled from the last known value for that id, so a light list
//     endpoint cannot erase an image reference fetched earlier;
//   - a listing only disappears through RemoveListing, never because a list
//     snapshot happened not to include it.
//
// Because each field is last-applied-wins among snapshots that carry it, a
// list refresh and a single-item refresh for the same id may land in either
// order.
package store

import (
	"sort"
	"strings"
	"sync"

	"webshop/internal/domain/entity"
	"webshop/internal/infrastructure/metrics"
)

type Topic string

const (
	TopicListings  Topic = "listings"
	TopicSelection Topic = "selection"
	TopicFavorites Topic = "favorites"
	TopicMessages  Topic = "messages"
	TopicOrders    Topic = "orders"
	TopicReviews   Topic = "reviews"
)

var allTopics = []Topic{TopicListings, TopicSelection, TopicFavorites, TopicMessages, TopicOrders, TopicReviews}

// Listener is called after a mutation commits, outside the store lock.
type Listener func(topic Topic)

// Snapshot is a deep copy of the store at one point in time.
type Snapshot struct {
	Listings         []*entity.Listing  `json:"listings"`
	Selected         *entity.Listing    `json:"selected"`
	Favorites        []*entity.Favorite `json:"favorites"`
	FavoriteItemIDs  []int64            `json:"favoriteItemIds"`
	SentMessages     []*entity.Message  `json:"sentMessages"`
	ReceivedMessages []*entity.Message  `json:"receivedMessages"`
	CustomerOrders   []*entity.Order    `json:"customerOrders"`
	SellerOrders     []*entity.Order    `json:"sellerOrders"`
	ReviewsItemID    int64              `json:"reviewsItemId,omitempty"`
	Reviews          []*entity.Review   `json:"reviews"`
}

type ViewStore struct {
	mu sync.RWMutex

	listings []*entity.Listing
	// known keeps the merged value of every listing seen since the last
	// explicit delete. It is the backfill source.
	known    map[int64]*entity.Listing
	selected int64

	favorites   []*entity.Favorite
	favoriteIDs map[int64]struct{}

	sent     []*entity.Message
	received []*entity.Message

	customerOrders []*entity.Order
	sellerOrders   []*entity.Order

	reviewsItemID int64
	reviews       []*entity.Review

	listenerMu sync.RWMutex
	listeners  map[int]Listener
	nextID     int

	metrics *metrics.MetricsManager
}

func NewViewStore(m *metrics.MetricsManager) *ViewStore {
	return &ViewStore{
		known:       make(map[int64]*entity.Listing),
		favoriteIDs: make(map[int64]struct{}),
		listeners:   make(map[int]Listener),
		metrics:     m,
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *ViewStore) Subscribe(l Listener) func() {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *ViewStore) notify(topics ...Topic) {
	s.listenerMu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.listenerMu.RUnlock()

	for _, topic := range topics {
		s.metrics.ObserveStoreMutation(string(topic))
		for _, l := range listeners {
			l(topic)
		}
	}
}

// Listings

// ReplaceListings installs a fresh list snapshot. Incoming entries are merged
// with what is known for their id; the selected listing survives even when
// the snapshot omits it.
func (s *ViewStore) ReplaceListings(incoming []*entity.Listing) {
	s.mu.Lock()
	next := make([]*entity.Listing, 0, len(incoming))
	index := make(map[int64]int, len(incoming))
	for _, l := range incoming {
		if l == nil || l.ID <= 0 {
			continue
		}
		merged := mergeListing(s.known[l.ID], l)
		s.known[l.ID] = merged
		if i, dup := index[l.ID]; dup {
			next[i] = merged
			continue
		}
		index[l.ID] = len(next)
		next = append(next, merged)
	}
	sortVIPFirst(next)
	s.listings = next
	s.mu.Unlock()

	s.notify(TopicListings, TopicSelection)
}

// UpsertListing merges one authoritative listing into the collection,
// deduplicated by id, and re-sorts VIP first. A listing without an id or a
// title after merging is rejected so no half-built record becomes visible.
func (s *ViewStore) UpsertListing(l *entity.Listing) (*entity.Listing, bool) {
	if l == nil || l.ID <= 0 {
		return nil, false
	}

	s.mu.Lock()
	merged := mergeListing(s.known[l.ID], l)
	if strings.TrimSpace(merged.Title) == "" {
		s.mu.Unlock()
		return nil, false
	}
	s.known[l.ID] = merged
	s.upsertLocked(merged)
	out := merged.Clone()
	s.mu.Unlock()

	s.notify(TopicListings, TopicSelection)
	return out, true
}

func (s *ViewStore) upsertLocked(merged *entity.Listing) {
	for i, existing := range s.listings {
		if existing.ID == merged.ID {
			s.listings[i] = merged
			sortVIPFirst(s.listings)
			return
		}
	}
	s.listings = append(s.listings, merged)
	sortVIPFirst(s.listings)
}

// RemoveListing is the explicit delete: it drops the listing, its backfill
// memory, any favorite pointing at it, and the selection if it was selected.
func (s *ViewStore) RemoveListing(id int64) {
	s.mu.Lock()
	delete(s.known, id)
	s.listings = filterListings(s.listings, func(l *entity.Listing) bool { return l.ID != id })
	if s.selected == id {
		s.selected = 0
	}
	favoritesChanged := false
	if _, ok := s.favoriteIDs[id]; ok {
		delete(s.favoriteIDs, id)
		kept := s.favorites[:0]
		for _, f := range s.favorites {
			if f.ItemID() != id {
				kept = append(kept, f)
			}
		}
		s.favorites = kept
		favoritesChanged = true
	}
	s.mu.Unlock()

	if favoritesChanged {
		s.notify(TopicListings, TopicSelection, TopicFavorites)
		return
	}
	s.notify(TopicListings, TopicSelection)
}

// Select makes id the active detail listing. It fails for an id the store
// has never seen.
func (s *ViewStore) Select(id int64) bool {
	s.mu.Lock()
	if _, ok := s.known[id]; !ok {
		s.mu.Unlock()
		return false
	}
	s.selected = id
	s.mu.Unlock()

	s.notify(TopicSelection)
	return true
}

func (s *ViewStore) ClearSelection() {
	s.mu.Lock()
	s.selected = 0
	s.mu.Unlock()

	s.notify(TopicSelection)
}

func (s *ViewStore) Listing(id int64) (*entity.Listing, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.known[id]
	return l.Clone(), ok
}

func (s *ViewStore) Selected() *entity.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == 0 {
		return nil
	}
	return s.known[s.selected].Clone()
}

func (s *ViewStore) Listings() []*entity.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.listings, (*entity.Listing).Clone)
}

// Favorites

// ReplaceFavorites installs the favorite records and rebuilds the membership
// set. Records are deduplicated by listing id.
func (s *ViewStore) ReplaceFavorites(incoming []*entity.Favorite) {
	s.mu.Lock()
	s.favorites = s.favorites[:0:0]
	s.favoriteIDs = make(map[int64]struct{}, len(incoming))
	for _, f := range incoming {
		id := f.ItemID()
		if id == 0 {
			continue
		}
		if _, dup := s.favoriteIDs[id]; dup {
			continue
		}
		s.favoriteIDs[id] = struct{}{}
		s.favorites = append(s.favorites, f.Clone())
	}
	s.mu.Unlock()

	s.notify(TopicFavorites)
}

func (s *ViewStore) ClearFavorites() {
	s.ReplaceFavorites(nil)
}

func (s *ViewStore) IsFavorite(itemID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.favoriteIDs[itemID]
	return ok
}

// Messages

func (s *ViewStore) ReplaceSentMessages(incoming []*entity.Message) {
	s.mu.Lock()
	s.sent = mergeMessages(s.sent, incoming)
	s.mu.Unlock()

	s.notify(TopicMessages)
}

func (s *ViewStore) ReplaceReceivedMessages(incoming []*entity.Message) {
	s.mu.Lock()
	s.received = mergeMessages(s.received, incoming)
	s.mu.Unlock()

	s.notify(TopicMessages)
}

// UpsertSentMessage records a message the user just sent.
func (s *ViewStore) UpsertSentMessage(m *entity.Message) {
	if m == nil || m.ID <= 0 {
		return
	}
	s.mu.Lock()
	s.sent = upsertMessage(s.sent, m)
	s.mu.Unlock()

	s.notify(TopicMessages)
}

// UpsertReceivedMessage records an answer the user just gave.
func (s *ViewStore) UpsertReceivedMessage(m *entity.Message) {
	if m == nil || m.ID <= 0 {
		return
	}
	s.mu.Lock()
	s.received = upsertMessage(s.received, m)
	s.mu.Unlock()

	s.notify(TopicMessages)
}

func (s *ViewStore) ReceivedMessage(id int64) (*entity.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.received {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return nil, false
}

// Orders

func (s *ViewStore) ReplaceCustomerOrders(incoming []*entity.Order) {
	s.mu.Lock()
	s.customerOrders = dedupeOrders(incoming)
	s.mu.Unlock()

	s.notify(TopicOrders)
}

func (s *ViewStore) ReplaceSellerOrders(incoming []*entity.Order) {
	s.mu.Lock()
	s.sellerOrders = dedupeOrders(incoming)
	s.mu.Unlock()

	s.notify(TopicOrders)
}

// UpsertOrder applies a server-confirmed order to whichever lists hold it,
// and adds a new order to the customer list.
func (s *ViewStore) UpsertOrder(o *entity.Order, asCustomer bool) {
	if o == nil || o.ID <= 0 {
		return
	}
	s.mu.Lock()
	replaced := false
	for _, list := range [][]*entity.Order{s.customerOrders, s.sellerOrders} {
		for i, existing := range list {
			if existing.ID == o.ID {
				list[i] = o.Clone()
				replaced = true
			}
		}
	}
	if !replaced && asCustomer {
		s.customerOrders = append([]*entity.Order{o.Clone()}, s.customerOrders...)
	}
	s.mu.Unlock()

	s.notify(TopicOrders)
}

func (s *ViewStore) SellerOrder(id int64) (*entity.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.sellerOrders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return nil, false
}

// Reviews

func (s *ViewStore) ReplaceReviews(itemID int64, incoming []*entity.Review) {
	s.mu.Lock()
	s.reviewsItemID = itemID
	s.reviews = make([]*entity.Review, 0, len(incoming))
	for _, r := range incoming {
		if r != nil {
			c := *r
			s.reviews = append(s.reviews, &c)
		}
	}
	s.mu.Unlock()

	s.notify(TopicReviews)
}

// AppendReview adds r when itemID is the listing whose reviews are shown.
func (s *ViewStore) AppendReview(itemID int64, r *entity.Review) {
	if r == nil {
		return
	}
	s.mu.Lock()
	if s.reviewsItemID != itemID {
		s.mu.Unlock()
		return
	}
	c := *r
	s.reviews = append(s.reviews, &c)
	s.mu.Unlock()

	s.notify(TopicReviews)
}

// Reset drops every collection, e.g. on logout.
func (s *ViewStore) Reset() {
	s.mu.Lock()
	s.listings = nil
	s.known = make(map[int64]*entity.Listing)
	s.selected = 0
	s.favorites = nil
	s.favoriteIDs = make(map[int64]struct{})
	s.sent = nil
	s.received = nil
	s.customerOrders = nil
	s.sellerOrders = nil
	s.reviewsItemID = 0
	s.reviews = nil
	s.mu.Unlock()

	s.notify(allTopics...)
}

// ResetUserData drops per-user collections but keeps the public listings.
func (s *ViewStore) ResetUserData() {
	s.mu.Lock()
	s.favorites = nil
	s.favoriteIDs = make(map[int64]struct{})
	s.sent = nil
	s.received = nil
	s.customerOrders = nil
	s.sellerOrders = nil
	s.mu.Unlock()

	s.notify(TopicFavorites, TopicMessages, TopicOrders)
}

func (s *ViewStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.favoriteIDs))
	for id := range s.favoriteIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	snap := Snapshot{
		Listings:         cloneAll(s.listings, (*entity.Listing).Clone),
		Favorites:        cloneAll(s.favorites, (*entity.Favorite).Clone),
		FavoriteItemIDs:  ids,
		SentMessages:     cloneAll(s.sent, (*entity.Message).Clone),
		ReceivedMessages: cloneAll(s.received, (*entity.Message).Clone),
		CustomerOrders:   cloneAll(s.customerOrders, (*entity.Order).Clone),
		SellerOrders:     cloneAll(s.sellerOrders, (*entity.Order).Clone),
		ReviewsItemID:    s.reviewsItemID,
		Reviews:          make([]*entity.Review, 0, len(s.reviews)),
	}
	if s.selected != 0 {
		snap.Selected = s.known[s.selected].Clone()
	}
	for _, r := range s.reviews {
		c := *r
		snap.Reviews = append(snap.Reviews, &c)
	}
	return snap
}

// mergeListing returns incoming with every absent field backfilled from prev.
func mergeListing(prev, incoming *entity.Listing) *entity.Listing {
	out := incoming.Clone()
	if prev == nil {
		return out
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = prev.Title
	}
	if strings.TrimSpace(out.Description) == "" {
		out.Description = prev.Description
	}
	if out.Price.IsZero() {
		out.Price = prev.Price
	}
	if out.OwnerEmail == "" {
		out.OwnerEmail = prev.OwnerEmail
	}
	if out.Category == "" {
		out.Category = prev.Category
	}
	if !out.HasImage() && prev.HasImage() {
		v := *prev.ImageURL
		out.ImageURL = &v
	}
	if out.ContactEmail == nil && prev.ContactEmail != nil {
		v := *prev.ContactEmail
		out.ContactEmail = &v
	}
	if out.ContactPhone == nil && prev.ContactPhone != nil {
		v := *prev.ContactPhone
		out.ContactPhone = &v
	}
	if out.IsVip == nil && prev.IsVip != nil {
		v := *prev.IsVip
		out.IsVip = &v
	}
	if out.PaymentMethod == nil && prev.PaymentMethod != nil {
		v := *prev.PaymentMethod
		out.PaymentMethod = &v
	}
	return out
}

func sortVIPFirst(listings []*entity.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].VIP() && !listings[j].VIP()
	})
}

// mergeMessages replaces prev with incoming, deduplicated by id. An answer
// already seen is never regressed to unanswered.
func mergeMessages(prev, incoming []*entity.Message) []*entity.Message {
	answered := make(map[int64]*string, len(prev))
	for _, m := range prev {
		if m.Answered() {
			answered[m.ID] = m.Response
		}
	}

	out := make([]*entity.Message, 0, len(incoming))
	index := make(map[int64]int, len(incoming))
	for _, m := range incoming {
		if m == nil || m.ID <= 0 {
			continue
		}
		c := m.Clone()
		if !c.Answered() {
			if r, ok := answered[c.ID]; ok {
				v := *r
				c.Response = &v
			}
		}
		if i, dup := index[c.ID]; dup {
			out[i] = c
			continue
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out
}

func upsertMessage(list []*entity.Message, m *entity.Message) []*entity.Message {
	c := m.Clone()
	for i, existing := range list {
		if existing.ID == c.ID {
			if !c.Answered() && existing.Answered() {
				c.Response = existing.Response
			}
			list[i] = c
			return list
		}
	}
	list = append(list, c)
	sortNewestFirst(list)
	return list
}

func sortNewestFirst(list []*entity.Message) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt.Time) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt.Time)
	})
}

func dedupeOrders(incoming []*entity.Order) []*entity.Order {
	out := make([]*entity.Order, 0, len(incoming))
	index := make(map[int64]int, len(incoming))
	for _, o := range incoming {
		if o == nil || o.ID <= 0 {
			continue
		}
		if i, dup := index[o.ID]; dup {
			out[i] = o.Clone()
			continue
		}
		index[o.ID] = len(out)
		out = append(out, o.Clone())
	}
	return out
}

func filterListings(list []*entity.Listing, keep func(*entity.Listing) bool) []*entity.Listing {
	out := list[:0]
	for _, l := range list {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

func cloneAll[T any](in []*T, clone func(*T) *T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		out = append(out, clone(v))
	}
	return out
}
