package store

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/internal/domain/entity"
)

func listing(id int64, title string) *entity.Listing {
	return &entity.Listing{
		ID:           id,
		Title:        title,
		Description:  "A perfectly ordinary item in good condition, barely used.",
		Price:        decimal.NewFromInt(10),
		OwnerEmail:   "ana@example.com",
		Category:     entity.CategoryOther,
		ContactPhone: entity.StringPtr("+359888"),
		IsVip:        entity.BoolPtr(false),
	}
}

func withImage(l *entity.Listing, ref string) *entity.Listing {
	l.ImageURL = entity.StringPtr(ref)
	return l
}

func TestReplaceListingsBackfillsImageFromNarrowEndpoint(t *testing.T) {
	s := NewViewStore(nil)

	s.UpsertListing(withImage(listing(1, "Bike"), "/uploads/1.jpg"))
	// Light list endpoint drops imageUrl.
	s.ReplaceListings([]*entity.Listing{{ID: 1, Title: "Bike", Price: decimal.NewFromInt(10)}})

	l, ok := s.Listing(1)
	require.True(t, ok)
	require.True(t, l.HasImage())
	assert.Equal(t, "/uploads/1.jpg", *l.ImageURL)
	assert.Equal(t, "+359888", *l.ContactPhone)
}

func TestPresentFieldsAreLastAppliedWins(t *testing.T) {
	s := NewViewStore(nil)

	s.UpsertListing(withImage(listing(1, "Bike"), "/uploads/old.jpg"))
	s.ReplaceListings([]*entity.Listing{withImage(listing(1, "Bike v2"), "/uploads/new.jpg")})

	l, _ := s.Listing(1)
	assert.Equal(t, "Bike v2", l.Title)
	assert.Equal(t, "/uploads/new.jpg", *l.ImageURL)
}

func TestSelectedListingSurvivesSnapshotWithoutIt(t *testing.T) {
	s := NewViewStore(nil)
	s.UpsertListing(listing(1, "Bike"))
	s.UpsertListing(listing(2, "Lamp"))
	require.True(t, s.Select(2))

	s.ReplaceListings([]*entity.Listing{listing(1, "Bike")})

	sel := s.Selected()
	require.NotNil(t, sel)
	assert.Equal(t, int64(2), sel.ID)
	assert.Len(t, s.Listings(), 1)
}

func TestExplicitDeleteIsTheOnlyWayToForget(t *testing.T) {
	s := NewViewStore(nil)
	s.UpsertListing(withImage(listing(1, "Bike"), "/uploads/1.jpg"))
	s.Select(1)
	s.ReplaceFavorites([]*entity.Favorite{{ID: 9, UserEmail: "bob@example.com", Item: listing(1, "Bike")}})

	s.RemoveListing(1)

	_, ok := s.Listing(1)
	assert.False(t, ok)
	assert.Nil(t, s.Selected())
	assert.False(t, s.IsFavorite(1))

	// A later snapshot without the image starts from scratch.
	s.ReplaceListings([]*entity.Listing{listing(1, "Bike")})
	l, _ := s.Listing(1)
	assert.False(t, l.HasImage())
}

func TestUpsertDeduplicatesAndSortsVIPFirst(t *testing.T) {
	s := NewViewStore(nil)
	s.UpsertListing(listing(1, "A"))
	s.UpsertListing(listing(2, "B"))
	vip := listing(3, "C")
	vip.IsVip = entity.BoolPtr(true)
	s.UpsertListing(vip)
	s.UpsertListing(listing(1, "A again"))

	got := s.Listings()
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, "A again", got[1].Title)
}

func TestUpsertRejectsHalfBuiltListing(t *testing.T) {
	s := NewViewStore(nil)

	_, ok := s.UpsertListing(&entity.Listing{Title: "no id yet"})
	assert.False(t, ok)
	_, ok = s.UpsertListing(&entity.Listing{ID: 5})
	assert.False(t, ok)
	assert.Empty(t, s.Listings())
}

// Merge safety: a field seen in any event is never lost to a later event
// that omits it, whatever the interleaving of list and item refreshes.
func TestMergeSafetyUnderRandomInterleavings(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))

	for run := 0; run < 200; run++ {
		s := NewViewStore(nil)
		seenImage := false
		seenPhone := false
		for step := 0; step < 12; step++ {
			l := &entity.Listing{ID: 1, Title: "Bike", Price: decimal.NewFromInt(5)}
			if rnd.Intn(3) == 0 {
				l.ImageURL = entity.StringPtr("/uploads/1.jpg")
				seenImage = true
			}
			if rnd.Intn(3) == 0 {
				l.ContactPhone = entity.StringPtr("+359888")
				seenPhone = true
			}
			if rnd.Intn(2) == 0 {
				s.ReplaceListings([]*entity.Listing{l})
			} else {
				s.UpsertListing(l)
			}

			got, ok := s.Listing(1)
			require.True(t, ok)
			assert.Equal(t, seenImage, got.HasImage())
			assert.Equal(t, seenPhone, got.ContactPhone != nil)
		}
	}
}

func TestFavoritesMembership(t *testing.T) {
	s := NewViewStore(nil)
	s.ReplaceFavorites([]*entity.Favorite{
		{ID: 1, Item: listing(10, "A")},
		{ID: 2, Item: listing(11, "B")},
		{ID: 3, Item: listing(10, "A dup")},
		{ID: 4},
	})

	assert.True(t, s.IsFavorite(10))
	assert.True(t, s.IsFavorite(11))
	assert.False(t, s.IsFavorite(12))
	snap := s.Snapshot()
	assert.Len(t, snap.Favorites, 2)
	assert.Equal(t, []int64{10, 11}, snap.FavoriteItemIDs)

	s.ClearFavorites()
	assert.False(t, s.IsFavorite(10))
	assert.Empty(t, s.Snapshot().Favorites)
}

func TestMessagesNeverLoseAnAnswer(t *testing.T) {
	s := NewViewStore(nil)
	now := time.Now()

	s.ReplaceReceivedMessages([]*entity.Message{
		{ID: 1, Content: "Available?", Response: entity.StringPtr("Yes"), CreatedAt: entity.Timestamp{Time: now}},
	})
	// A lagging replica answers with the pre-answer state.
	s.ReplaceReceivedMessages([]*entity.Message{
		{ID: 1, Content: "Available?", CreatedAt: entity.Timestamp{Time: now}},
		{ID: 2, Content: "Price?", CreatedAt: entity.Timestamp{Time: now.Add(time.Minute)}},
		{ID: 2, Content: "Price?", CreatedAt: entity.Timestamp{Time: now.Add(time.Minute)}},
	})

	snap := s.Snapshot()
	require.Len(t, snap.ReceivedMessages, 2)
	assert.Equal(t, int64(2), snap.ReceivedMessages[0].ID)
	m, ok := s.ReceivedMessage(1)
	require.True(t, ok)
	assert.True(t, m.Answered())
}

func TestConcurrentIdenticalRefreshesAreIdempotent(t *testing.T) {
	batch := []*entity.Message{
		{ID: 1, Content: "a", CreatedAt: entity.Timestamp{Time: time.Unix(100, 0)}},
		{ID: 2, Content: "b", Response: entity.StringPtr("ok"), CreatedAt: entity.Timestamp{Time: time.Unix(200, 0)}},
	}

	once := NewViewStore(nil)
	once.ReplaceSentMessages(batch)
	once.ReplaceReceivedMessages(batch)

	twice := NewViewStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			twice.ReplaceSentMessages(batch)
			twice.ReplaceReceivedMessages(batch)
		}()
	}
	wg.Wait()

	assert.Equal(t, once.Snapshot(), twice.Snapshot())
}

func TestOrdersUpsertAndLookup(t *testing.T) {
	s := NewViewStore(nil)
	s.ReplaceSellerOrders([]*entity.Order{{ID: 1, Status: entity.OrderPending}, {ID: 1, Status: entity.OrderPending}})

	s.UpsertOrder(&entity.Order{ID: 1, Status: entity.OrderConfirmed}, false)
	o, ok := s.SellerOrder(1)
	require.True(t, ok)
	assert.Equal(t, entity.OrderConfirmed, o.Status)

	s.UpsertOrder(&entity.Order{ID: 2, Status: entity.OrderPending}, true)
	snap := s.Snapshot()
	assert.Len(t, snap.SellerOrders, 1)
	assert.Len(t, snap.CustomerOrders, 1)
}

func TestReviewsFollowShownListing(t *testing.T) {
	s := NewViewStore(nil)
	s.ReplaceReviews(1, []*entity.Review{{ID: 1, Rating: 5}})

	s.AppendReview(2, &entity.Review{ID: 2, Rating: 1})
	s.AppendReview(1, &entity.Review{ID: 3, Rating: 4})

	snap := s.Snapshot()
	assert.Equal(t, int64(1), snap.ReviewsItemID)
	assert.Len(t, snap.Reviews, 2)
}

func TestListenersAreNotifiedAndCanUnsubscribe(t *testing.T) {
	s := NewViewStore(nil)
	var topics []Topic
	unsubscribe := s.Subscribe(func(topic Topic) { topics = append(topics, topic) })

	s.ReplaceFavorites(nil)
	s.UpsertListing(listing(1, "A"))
	unsubscribe()
	s.ClearSelection()

	assert.Equal(t, []Topic{TopicFavorites, TopicListings, TopicSelection}, topics)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := NewViewStore(nil)
	s.UpsertListing(withImage(listing(1, "A"), "/a.jpg"))

	snap := s.Snapshot()
	*snap.Listings[0].ImageURL = "/tampered.jpg"

	l, _ := s.Listing(1)
	assert.Equal(t, "/a.jpg", *l.ImageURL)
}

func TestResetUserDataKeepsListings(t *testing.T) {
	s := NewViewStore(nil)
	s.UpsertListing(listing(1, "A"))
	s.ReplaceFavorites([]*entity.Favorite{{ID: 1, Item: listing(1, "A")}})
	s.ReplaceSentMessages([]*entity.Message{{ID: 1}})

	s.ResetUserData()
	snap := s.Snapshot()
	assert.Len(t, snap.Listings, 1)
	assert.Empty(t, snap.Favorites)
	assert.Empty(t, snap.SentMessages)

	s.Reset()
	assert.Empty(t, s.Snapshot().Listings)
}
