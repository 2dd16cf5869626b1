package service

import (
	"WardrobeAI/internal/model"
	"WardrobeAI/internal/repo"
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Таблицы подбора. Детерминированные эвристики: группировка по жёстко
// заданным категориям, порядок парных сочетаний задаётся индексами,
// случайным остаётся только «уровень уверенности».
var (
	topCategories    = []string{"T-Shirts", "Shirts", "Sweaters", "Hoodies"}
	bottomCategories = []string{"Pants", "Shorts", "Skirts"}
	shoeCategories   = []string{"Shoes", "Sneakers", "Boots"}

	comboTopCategories    = []string{"T-Shirts", "Shirts"}
	comboBottomCategories = []string{"Pants", "Shorts"}

	seasonalCategories = map[string][]string{
		"spring": {"T-Shirts", "Light Jackets", "Sneakers"},
		"summer": {"T-Shirts", "Shorts", "Sandals", "Dresses"},
		"fall":   {"Sweaters", "Jackets", "Boots", "Pants"},
		"winter": {"Coats", "Sweaters", "Boots", "Pants"},
	}

	occasionCategories = map[string][]string{
		"work":   {"Shirts", "Pants", "Blazers", "Dress Shoes"},
		"casual": {"T-Shirts", "Jeans", "Sneakers"},
		"formal": {"Suits", "Dresses", "Dress Shoes"},
		"party":  {"Dresses", "Heels", "Accessories"},
	}

	seasonalTips = map[string][]string{
		"spring": {"Layer light pieces", "Add colorful accessories"},
		"summer": {"Choose breathable fabrics", "Opt for lighter colors"},
		"fall":   {"Embrace earth tones", "Layer for temperature changes"},
		"winter": {"Focus on warm layers", "Add texture with knits"},
	}

	occasionSuggestions = map[string][]string{
		"work":   {"Professional silhouettes", "Neutral color palette"},
		"casual": {"Comfortable fabrics", "Mix and match basics"},
		"formal": {"Classic cuts", "Elegant accessories"},
		"party":  {"Statement pieces", "Bold colors or patterns"},
	}

	colorFamilies = map[string][]string{
		"neutral": {"black", "white", "gray", "grey", "beige", "brown"},
		"warm":    {"red", "orange", "yellow", "pink"},
		"cool":    {"blue", "green", "purple", "navy"},
	}

	currentTrends = []Trend{
		{Name: "Oversized Blazers", Popularity: 95},
		{Name: "Wide-leg Pants", Popularity: 88},
		{Name: "Chunky Sneakers", Popularity: 82},
		{Name: "Neutral Tones", Popularity: 90},
		{Name: "Layered Necklaces", Popularity: 75},
	}

	trendPool = []string{
		"Sustainable Fashion",
		"Gender-Neutral Clothing",
		"Vintage Revival",
		"Tech-Wear",
		"Minimalist Aesthetic",
	}
)

// StylistService — детерминированные «AI»-рекомендации по уже загруженному
// гардеробу пользователя. Заглушки до появления настоящей ML-модели.
type StylistService struct {
	items  repo.ClothingItemRepository
	users  repo.UserRepository
	logger *zap.SugaredLogger
}

func NewStylistService(items repo.ClothingItemRepository, users repo.UserRepository, logger *zap.SugaredLogger) *StylistService {
	return &StylistService{items: items, users: users, logger: logger}
}

// Recommendation — один подобранный комплект.
type Recommendation struct {
	ID         string               `json:"id"`
	Items      []model.ClothingItem `json:"items"`
	Confidence float64              `json:"confidence"`
	Reason     string               `json:"reason"`
}

// Recommendations группирует гардероб на верх/низ/обувь и собирает до пяти
// комплектов по индексному модулю.
func (s *StylistService) Recommendations(ctx context.Context, userID string) ([]Recommendation, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildRecommendations(items), nil
}

func buildRecommendations(items []model.ClothingItem) []Recommendation {
	tops := filterByCategories(items, topCategories)
	bottoms := filterByCategories(items, bottomCategories)
	shoes := filterByCategories(items, shoeCategories)

	recommendations := []Recommendation{}
	for i := 0; i < len(tops) && i < 5; i++ {
		if len(bottoms) == 0 || len(shoes) == 0 {
			break
		}
		recommendations = append(recommendations, Recommendation{
			ID: fmt.Sprintf("rec_%d", i),
			Items: []model.ClothingItem{
				tops[i],
				bottoms[i%len(bottoms)],
				shoes[i%len(shoes)],
			},
			Confidence: confidence(),
			Reason:     "Color coordination and style balance",
		})
	}
	return recommendations
}

// StyleAnalysis — дескриптор стиля пользователя.
type StyleAnalysis struct {
	DominantCategories []CountEntry `json:"dominantCategories"`
	ColorPalette       []CountEntry `json:"colorPalette"`
	StylePersonality   string       `json:"stylePersonality"`
	TotalItems         int          `json:"totalItems"`
}

// CountEntry — значение с числом вхождений.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *StylistService) StyleAnalysis(ctx context.Context, userID string) (StyleAnalysis, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return StyleAnalysis{}, err
	}

	categories := map[string]int{}
	colors := map[string]int{}
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "Unknown"
		}
		categories[category]++
		if item.Color != "" {
			colors[item.Color]++
		}
	}

	personality := "Minimalist"
	if len(items) > 10 {
		personality = "Fashion Forward"
	}

	return StyleAnalysis{
		DominantCategories: topEntries(categories, 3),
		ColorPalette:       topEntries(colors, 5),
		StylePersonality:   personality,
		TotalItems:         len(items),
	}, nil
}

// Combination — пара верх+низ.
type Combination struct {
	ID            string               `json:"id"`
	Items         []model.ClothingItem `json:"items"`
	Compatibility float64              `json:"compatibility"`
}

// OutfitSuggestions перебирает пары верх×низ в индексном порядке.
func (s *StylistService) OutfitSuggestions(ctx context.Context, userID string, maxCombinations int) ([]Combination, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if maxCombinations <= 0 {
		maxCombinations = 5
	}

	tops := filterByCategories(items, comboTopCategories)
	bottoms := filterByCategories(items, comboBottomCategories)

	combinations := []Combination{}
	if len(tops) == 0 || len(bottoms) == 0 {
		return combinations, nil
	}

	limit := len(tops) * len(bottoms)
	if maxCombinations < limit {
		limit = maxCombinations
	}
	for i := 0; i < limit; i++ {
		top := tops[i%len(tops)]
		bottom := bottoms[(i/len(tops))%len(bottoms)]
		combinations = append(combinations, Combination{
			ID:            fmt.Sprintf("combo_%d", i),
			Items:         []model.ClothingItem{top, bottom},
			Compatibility: confidence(),
		})
	}
	return combinations, nil
}

// SeasonalResult — подборка по сезону со статичными советами.
type SeasonalResult struct {
	Season          string               `json:"season"`
	Recommendations []model.ClothingItem `json:"recommendations"`
	Tips            []string             `json:"tips"`
}

func (s *StylistService) Seasonal(ctx context.Context, userID, season string) (SeasonalResult, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return SeasonalResult{}, err
	}

	key := strings.ToLower(season)
	tips, ok := seasonalTips[key]
	if !ok {
		tips = []string{"Dress for comfort and style"}
	}
	return SeasonalResult{
		Season:          season,
		Recommendations: filterByCategories(items, seasonalCategories[key]),
		Tips:            tips,
	}, nil
}

// OccasionResult — подборка по поводу.
type OccasionResult struct {
	Occasion    string               `json:"occasion"`
	Outfits     []model.ClothingItem `json:"outfits"`
	Suggestions []string             `json:"suggestions"`
}

func (s *StylistService) Occasion(ctx context.Context, userID, occasion string) (OccasionResult, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return OccasionResult{}, err
	}

	key := strings.ToLower(occasion)
	suggestions, ok := occasionSuggestions[key]
	if !ok {
		suggestions = []string{"Express your personal style"}
	}
	return OccasionResult{
		Occasion:    occasion,
		Outfits:     filterByCategories(items, occasionCategories[key]),
		Suggestions: suggestions,
	}, nil
}

// StyleProfile хранится внутри preferences пользователя.
func (s *StylistService) StyleProfile(ctx context.Context, userID string) (map[string]any, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotFound("User not found")
	}

	if profile, ok := user.Preferences["styleProfile"].(map[string]any); ok {
		return profile, nil
	}
	return map[string]any{
		"styles":    []string{},
		"colors":    []string{},
		"occasions": []string{},
		"brands":    []string{},
	}, nil
}

func (s *StylistService) UpdateStyleProfile(ctx context.Context, userID string, profile map[string]any) (map[string]any, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotFound("User not found")
	}

	prefs := model.JSONMap{}
	for k, v := range user.Preferences {
		prefs[k] = v
	}
	prefs["styleProfile"] = profile

	if _, err := s.users.Update(ctx, userID, map[string]any{"preferences": prefs}); err != nil {
		return nil, err
	}
	return profile, nil
}

/// Feedback принимает оценку комплекта. Пока только подтверждает приём:
// хранилище обратной связи появится вместе с настоящей моделью рекомендаций.
func (s *StylistService) Feedback(ctx context.Context, userID, outfitID string, rating int) error {
	s.logger.Infow("Feedback: outfit rated", "user_id", userID, "outfit_id", outfitID, "rating", rating)
	return nil
}

// Trend — модный тренд с уровнем популярности или релевантности.
type Trend struct {
	Name       string  `json:"name"`
	Popularity int     `json:"popularity,omitempty"`
	Relevance  float64 `json:"relevance,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

// CurrentTrends возвращает статический список трендов.
func (s *StylistService) CurrentTrends() []Trend {
	return currentTrends
}

// PersonalizedTrends привязывает первые три тренда из пула к самой
// представленной категории гардероба.
func (s *StylistService) PersonalizedTrends(ctx context.Context, userID string) ([]Trend, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	base := "fashion"
	for _, item := range items {
		if item.Category != "" {
			base = item.Category
			break
		}
	}

	trends := make([]Trend, 0, 3)
	for _, name := range trendPool[:3] {
		trends = append(trends, Trend{
			Name:      name,
			Relevance: confidence(),
			Reason:    fmt.Sprintf("Based on your %s collection", base),
		})
	}
	return trends, nil
}

// ColorAnalysis — агрегат по цветам гардероба.
type ColorAnalysis struct {
	DominantColors  []CountEntry `json:"dominantColors"`
	Palette         string       `json:"palette"`
	Recommendations []string     `json:"recommendations"`
}

func (s *StylistService) ColorAnalysis(ctx context.Context, userID string) (ColorAnalysis, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return ColorAnalysis{}, err
	}

	colors := map[string]int{}
	for _, item := range items {
		if item.Color != "" {
			colors[item.Color]++
		}
	}

	dominant := topEntries(colors, 5)
	palette := "Diverse"
	if len(dominant) > 0 {
		palette = "Neutral-based"
	}
	return ColorAnalysis{
		DominantColors:  dominant,
		Palette:         palette,
		Recommendations: []string{"Add more color variety", "Consider seasonal colors"},
	}, nil
}

// ColorMatch отбирает предметы, чей цвет из той же семьи, что и целевой.
func (s *StylistService) ColorMatch(ctx context.Context, userID, targetColor string) ([]model.ClothingItem, error) {
	items, err := s.items.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	matched := []model.ClothingItem{}
	for _, item := range items {
		if item.Color != "" && ColorsMatch(item.Color, targetColor) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// ColorsMatch — два цвета совместимы, если лежат в одной семье
// (neutral/warm/cool) или совпадают буквально.
func ColorsMatch(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, family := range colorFamilies {
		if containsString(family, la) && containsString(family, lb) {
			return true
		}
	}
	return la == lb
}

func filterByCategories(items []model.ClothingItem, categories []string) []model.ClothingItem {
	filtered := []model.ClothingItem{}
	for _, item := range items {
		if containsString(categories, item.Category) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// topEntries сортирует счётчики по убыванию (при равенстве — по имени,
// чтобы порядок был стабильным) и возвращает первые n.
func topEntries(counts map[string]int, n int) []CountEntry {
	entries := make([]CountEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, CountEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

func confidence() float64 {
	return rand.Float64()*30 + 70
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
