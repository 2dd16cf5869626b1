package service

import (
	"WardrobeAI/internal/model"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// stubItemRepo отдаёт фиксированный список предметов.
type stubItemRepo struct {
	items []model.ClothingItem
}

func (s *stubItemRepo) Create(ctx context.Context, item *model.ClothingItem) error { return nil }
func (s *stubItemRepo) FindByID(ctx context.Context, id string) (*model.ClothingItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, nil
}
func (s *stubItemRepo) FindByUserID(ctx context.Context, userID string) ([]model.ClothingItem, error) {
	return s.items, nil
}
func (s *stubItemRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.ClothingItem, error) {
	return s.FindByID(ctx, id)
}
func (s *stubItemRepo) Delete(ctx context.Context, id string) (bool, error) { return true, nil }

// stubUserRepo отдаёт одного пользователя.
type stubUserRepo struct {
	user    *model.User
	updated map[string]any
}

func (s *stubUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, nil
}
func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (s *stubUserRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	s.updated = fields
	return s.user, nil
}
func (s *stubUserRepo) Delete(ctx context.Context, id string) (bool, error) { return true, nil }

func wardrobeOf(categories ...string) []model.ClothingItem {
	items := make([]model.ClothingItem, 0, len(categories))
	for i, c := range categories {
		items = append(items, model.ClothingItem{
			ID:       fmt.Sprintf("item-%d", i),
			Name:     fmt.Sprintf("%s %d", c, i),
			Category: c,
			Color:    "blue",
		})
	}
	return items
}

func newStylist(items []model.ClothingItem, user *model.User) *StylistService {
	return NewStylistService(&stubItemRepo{items: items}, &stubUserRepo{user: user}, zap.NewNop().Sugar())
}

func TestRecommendations_Pairing(t *testing.T) {
	items := wardrobeOf("T-Shirts", "Shirts", "Sweaters", "Pants", "Shorts", "Sneakers")
	s := newStylist(items, nil)

	recs, err := s.Recommendations(context.Background(), "user-1")
	assert.NoError(t, err)

	// три верха, значит три комплекта; низ и обувь берутся по модулю индекса
	assert.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, fmt.Sprintf("rec_%d", i), rec.ID)
		assert.Len(t, rec.Items, 3)
		assert.GreaterOrEqual(t, rec.Confidence, 70.0)
		assert.LessOrEqual(t, rec.Confidence, 100.0)
		assert.Equal(t, "Color coordination and style balance", rec.Reason)
	}
	// второй комплект: второй верх, второй низ, первая (единственная) обувь
	assert.Equal(t, "Shirts", recs[1].Items[0].Category)
	assert.Equal(t, "Shorts", recs[1].Items[1].Category)
	assert.Equal(t, "Sneakers", recs[1].Items[2].Category)
}

func TestRecommendations_CapAtFive(t *testing.T) {
	categories := []string{"Pants", "Sneakers"}
	for i := 0; i < 8; i++ {
		categories = append(categories, "T-Shirts")
	}
	s := newStylist(wardrobeOf(categories...), nil)

	recs, err := s.Recommendations(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestRecommendations_MissingGroup(t *testing.T) {
	// без обуви комплекты не собрать
	s := newStylist(wardrobeOf("T-Shirts", "Pants"), nil)

	recs, err := s.Recommendations(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestOutfitSuggestions_IndexOrder(t *testing.T) {
	items := wardrobeOf("T-Shirts", "Shirts", "Pants", "Shorts")
	s := newStylist(items, nil)

	combos, err := s.OutfitSuggestions(context.Background(), "user-1", 10)
	assert.NoError(t, err)

	// 2 верха × 2 низа = 4 пары, обход: верх бежит быстрее
	assert.Len(t, combos, 4)
	assert.Equal(t, "T-Shirts", combos[0].Items[0].Category)
	assert.Equal(t, "Pants", combos[0].Items[1].Category)
	assert.Equal(t, "Shirts", combos[1].Items[0].Category)
	assert.Equal(t, "Pants", combos[1].Items[1].Category)
	assert.Equal(t, "T-Shirts", combos[2].Items[0].Category)
	assert.Equal(t, "Shorts", combos[2].Items[1].Category)
}

func TestOutfitSuggestions_Limit(t *testing.T) {
	items := wardrobeOf("T-Shirts", "Shirts", "Pants", "Shorts")
	s := newStylist(items, nil)

	combos, err := s.OutfitSuggestions(context.Background(), "user-1", 2)
	assert.NoError(t, err)
	assert.Len(t, combos, 2)
}

func TestStyleAnalysis_Personality(t *testing.T) {
	s := newStylist(wardrobeOf("T-Shirts", "Pants"), nil)
	analysis, err := s.StyleAnalysis(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "Minimalist", analysis.StylePersonality)
	assert.Equal(t, 2, analysis.TotalItems)

	many := make([]string, 11)
	for i := range many {
		many[i] = "T-Shirts"
	}
	s = newStylist(wardrobeOf(many...), nil)
	analysis, err = s.StyleAnalysis(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "Fashion Forward", analysis.StylePersonality)
}

func TestSeasonal_KnownAndUnknown(t *testing.T) {
	s := newStylist(wardrobeOf("Sweaters", "Boots", "T-Shirts"), nil)

	res, err := s.Seasonal(context.Background(), "user-1", "Fall")
	assert.NoError(t, err)
	assert.Equal(t, "Fall", res.Season)
	assert.Len(t, res.Recommendations, 2)
	assert.Contains(t, res.Tips, "Embrace earth tones")

	res, err = s.Seasonal(context.Background(), "user-1", "monsoon")
	assert.NoError(t, err)
	assert.Empty(t, res.Recommendations)
	assert.Equal(t, []string{"Dress for comfort and style"}, res.Tips)
}

func TestOccasion_KnownAndUnknown(t *testing.T) {
	s := newStylist(wardrobeOf("Shirts", "Pants", "Sneakers"), nil)

	res, err := s.Occasion(context.Background(), "user-1", "work")
	assert.NoError(t, err)
	assert.Len(t, res.Outfits, 2)
	assert.Contains(t, res.Suggestions, "Professional silhouettes")

	res, err = s.Occasion(context.Background(), "user-1", "space travel")
	assert.NoError(t, err)
	assert.Equal(t, []string{"Express your personal style"}, res.Suggestions)
}

func TestStyleProfile_DefaultAndUpdate(t *testing.T) {
	user := &model.User{ID: "user-1", Preferences: model.JSONMap{}}
	s := newStylist(nil, user)
	ctx := context.Background()

	profile, err := s.StyleProfile(ctx, "user-1")
	assert.NoError(t, err)
	assert.Contains(t, profile, "styles")
	assert.Contains(t, profile, "colors")

	updated, err := s.UpdateStyleProfile(ctx, "user-1", map[string]any{"styles": []any{"minimal"}})
	assert.NoError(t, err)
	assert.Equal(t, []any{"minimal"}, updated["styles"])

	_, err = s.StyleProfile(ctx, "missing-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersonalizedTrends(t *testing.T) {
	s := newStylist(wardrobeOf("Sweaters"), nil)

	trends, err := s.PersonalizedTrends(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Len(t, trends, 3)
	for _, tr := range trends {
		assert.Equal(t, "Based on your Sweaters collection", tr.Reason)
		assert.GreaterOrEqual(t, tr.Relevance, 70.0)
	}
}

func TestColorsMatch(t *testing.T) {
	// оба neutral
	assert.True(t, ColorsMatch("black", "white"))
	// оба cool, без учёта регистра
	assert.True(t, ColorsMatch("Blue", "navy"))
	// буквальное совпадение вне семей
	assert.True(t, ColorsMatch("magenta", "magenta"))
	// warm против cool
	assert.False(t, ColorsMatch("red", "blue"))
}

func TestColorMatch_FiltersByFamily(t *testing.T) {
	items := []model.ClothingItem{
		{ID: "1", Name: "a", Category: "Shirts", Color: "blue"},
		{ID: "2", Name: "b", Category: "Pants", Color: "red"},
		{ID: "3", Name: "c", Category: "Shoes", Color: "navy"},
	}
	s := newStylist(items, nil)

	matched, err := s.ColorMatch(context.Background(), "user-1", "green")
	assert.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestTopEntries_StableOrder(t *testing.T) {
	entries := topEntries(map[string]int{"b": 2, "a": 2, "c": 5}, 3)
	assert.Equal(t, []CountEntry{{Name: "c", Count: 5}, {Name: "a", Count: 2}, {Name: "b", Count: 2}}, entries)
}
