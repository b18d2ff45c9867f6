package tools

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func travelToolSet(t *testing.T) map[string]Tool {
	t.Helper()
	set := make(map[string]Tool)
	for _, tool := range NewTravelTools(rand.New(rand.NewSource(1))) {
		set[tool.Name()] = tool
	}
	return set
}

func callJSON(t *testing.T, tool Tool, args map[string]interface{}) map[string]any {
	t.Helper()
	result, err := tool.Call(context.Background(), args)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(ExtractText(result)), &payload))
	return payload
}

func TestNewTravelToolsNames(t *testing.T) {
	tools := NewTravelTools(rand.New(rand.NewSource(1)))
	require.Len(t, tools, 4)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name())
		assert.NotEmpty(t, tool.Description())
		assert.Equal(t, "object", tool.InputSchema().Type)
	}
	assert.Equal(t, []string{ToolCheckWeather, ToolSearchFlights, ToolRecommendHotels, ToolCreateItinerary}, names)
}

func TestWeatherTool(t *testing.T) {
	set := travelToolSet(t)
	payload := callJSON(t, set[ToolCheckWeather], map[string]interface{}{"city": "Paris"})

	assert.Equal(t, "Paris", payload["city"])
	assert.Contains(t, []any{"sunny", "rainy", "cloudy", "snowy"}, payload["condition"])

	temperature := payload["temperature"].(float64)
	assert.GreaterOrEqual(t, temperature, float64(10))
	assert.LessOrEqual(t, temperature, float64(30))
	assert.Contains(t, payload["advice"], payload["condition"])
}

func TestFlightsTool(t *testing.T) {
	set := travelToolSet(t)
	payload := callJSON(t, set[ToolSearchFlights], map[string]interface{}{
		"origin": "Boston", "destination": "London",
	})

	assert.Equal(t, "Boston", payload["origin"])
	assert.Equal(t, "London", payload["destination"])

	flights := payload["flights"].([]any)
	require.Len(t, flights, 2)
	for _, f := range flights {
		flight := f.(map[string]any)
		assert.NotEmpty(t, flight["airline"])
		assert.Contains(t, []any{float64(200), float64(350), float64(500)}, flight["price"])
	}
}

func TestHotelsToolBudgetRange(t *testing.T) {
	set := travelToolSet(t)

	cases := []struct {
		budget   string
		min, max float64
	}{
		{"low", 50, 100},
		{"medium", 100, 200},
		{"high", 200, 500},
		{"nonsense", 100, 200}, // unknown budgets fall back to medium
	}

	for _, tc := range cases {
		t.Run(tc.budget, func(t *testing.T) {
			payload := callJSON(t, set[ToolRecommendHotels], map[string]interface{}{
				"city": "Paris", "budget": tc.budget,
			})

			hotels := payload["hotels"].([]any)
			require.Len(t, hotels, 3)
			for _, h := range hotels {
				hotel := h.(map[string]any)
				price := hotel["price_per_night"].(float64)
				assert.GreaterOrEqual(t, price, tc.min)
				assert.Less(t, price, tc.max)

				rating := hotel["rating"].(float64)
				assert.GreaterOrEqual(t, rating, 3.5)
				assert.LessOrEqual(t, rating, 5.0)
			}
		})
	}
}

func TestItineraryToolCapsDays(t *testing.T) {
	set := travelToolSet(t)
	payload := callJSON(t, set[ToolCreateItinerary], map[string]interface{}{
		"destination": "Sydney", "days": float64(8),
	})

	assert.Equal(t, "8 days", payload["duration"], "the label keeps the requested length")
	itinerary := payload["itinerary"].([]any)
	assert.Len(t, itinerary, 5, "the day-by-day plan caps at five days")
}

func TestItineraryToolDistinctActivities(t *testing.T) {
	set := travelToolSet(t)
	payload := callJSON(t, set[ToolCreateItinerary], map[string]interface{}{
		"destination": "Sydney", "days": float64(3),
	})

	itinerary := payload["itinerary"].([]any)
	require.Len(t, itinerary, 3)
	for _, day := range itinerary {
		for _, activities := range day.(map[string]any) {
			list := activities.([]any)
			require.Len(t, list, 2)
			assert.NotEqual(t, list[0], list[1])
		}
	}
}

func TestTravelToolsConcurrentCalls(t *testing.T) {
	set := travelToolSet(t)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := set[ToolCheckWeather].Call(context.Background(), map[string]interface{}{"city": "Paris"})
			assert.NoError(t, err)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
