package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	models "github.com/XiaoConstantine/mcp-go/pkg/model"
)

// Travel tool names. The evaluator's rules are written against these.
const (
	ToolCheckWeather    = "check_weather"
	ToolSearchFlights   = "search_flights"
	ToolRecommendHotels = "recommend_hotels"
	ToolCreateItinerary = "create_itinerary"
)

// travelData holds the generators' shared randomness. Tool calls from one
// assistant turn may execute concurrently, so the rand source is guarded.
type travelData struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (d *travelData) intn(n int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Intn(n)
}

func (d *travelData) float64() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.Float64()
}

func textResult(v any) (*models.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &models.CallToolResult{
		Content: []models.Content{
			models.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

func stringArg(args map[string]interface{}, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intArg(args map[string]interface{}, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

// NewTravelTools builds the four mock travel-planning tools backed by the
// given random source. The outputs are random data in a fixed shape; the
// harness never parses them.
func NewTravelTools(rng *rand.Rand) []Tool {
	d := &travelData{rng: rng}
	return []Tool{
		newWeatherTool(d),
		newFlightsTool(d),
		newHotelsTool(d),
		newItineraryTool(d),
	}
}

func newWeatherTool(d *travelData) Tool {
	schema := models.InputSchema{
		Type: "object",
		Properties: map[string]models.ParameterSchema{
			"city": {Type: "string", Description: "Name of the city to check weather for", Required: true},
		},
	}
	conditions := []string{"sunny", "rainy", "cloudy", "snowy"}

	return NewFuncTool(ToolCheckWeather,
		"Check weather conditions for a given city. This tool MUST be called before recommending travel plans.",
		schema,
		func(ctx context.Context, args map[string]interface{}) (*models.CallToolResult, error) {
			city := stringArg(args, "city", "unknown")
			condition := conditions[d.intn(len(conditions))]
			temperature := 10 + d.intn(21)
			return textResult(map[string]any{
				"city":        city,
				"condition":   condition,
				"temperature": temperature,
				"advice":      fmt.Sprintf("Weather is %s with %d°C", condition, temperature),
			})
		})
}

func newFlightsTool(d *travelData) Tool {
	schema := models.InputSchema{
		Type: "object",
		Properties: map[string]models.ParameterSchema{
			"origin":      {Type: "string", Description: "Departure city", Required: true},
			"destination": {Type: "string", Description: "Arrival city", Required: true},
		},
	}
	airlines := []string{"AirTravel", "SkyHigh", "CloudNine"}
	prices := []int{200, 350, 500}

	return NewFuncTool(ToolSearchFlights,
		"Search for available flights between two cities. This tool should be called after checking weather.",
		schema,
		func(ctx context.Context, args map[string]interface{}) (*models.CallToolResult, error) {
			flights := make([]map[string]any, 0, 2)
			for i := 0; i < 2; i++ {
				flights = append(flights, map[string]any{
					"airline":   airlines[d.intn(len(airlines))],
					"price":     prices[d.intn(len(prices))],
					"departure": fmt.Sprintf("%d:00", 8+d.intn(11)),
					"duration":  fmt.Sprintf("%dh", 2+d.intn(7)),
				})
			}
			return textResult(map[string]any{
				"origin":      stringArg(args, "origin", "unknown"),
				"destination": stringArg(args, "destination", "unknown"),
				"flights":     flights,
			})
		})
}

func newHotelsTool(d *travelData) Tool {
	schema := models.InputSchema{
		Type: "object",
		Properties: map[string]models.ParameterSchema{
			"city":   {Type: "string", Description: "City to find hotels in", Required: true},
			"budget": {Type: "string", Description: "Budget level (low, medium, high)"},
		},
	}
	names := []string{"Grand Hotel", "City View Inn", "Comfort Stay", "Luxury Resort"}
	budgetRanges := map[string][2]int{
		"low":    {50, 100},
		"medium": {100, 200},
		"high":   {200, 500},
	}

	return NewFuncTool(ToolRecommendHotels,
		"Recommend hotels in a city based on budget. This tool should be called after searching flights.",
		schema,
		func(ctx context.Context, args map[string]interface{}) (*models.CallToolResult, error) {
			budget := stringArg(args, "budget", "medium")
			priceRange, ok := budgetRanges[budget]
			if !ok {
				priceRange = budgetRanges["medium"]
			}
			hotels := make([]map[string]any, 0, 3)
			for i := 0; i < 3; i++ {
				hotels = append(hotels, map[string]any{
					"name":            names[d.intn(len(names))],
					"price_per_night": priceRange[0] + d.intn(priceRange[1]-priceRange[0]),
					"rating":          float64(int((3.5+d.float64()*1.5)*10)) / 10,
				})
			}
			return textResult(map[string]any{
				"city":   stringArg(args, "city", "unknown"),
				"budget": budget,
				"hotels": hotels,
			})
		})
}

func newItineraryTool(d *travelData) Tool {
	schema := models.InputSchema{
		Type: "object",
		Properties: map[string]models.ParameterSchema{
			"destination": {Type: "string", Description: "Destination city", Required: true},
			"days":        {Type: "number", Description: "Number of days for the trip", Required: true},
		},
	}
	activities := []string{
		"Visit local museums",
		"Explore city center",
		"Try local cuisine",
		"Visit landmarks",
		"Shopping tour",
		"Beach activities",
		"Mountain hiking",
	}

	return NewFuncTool(ToolCreateItinerary,
		"Create a travel itinerary for the destination. This tool should be called LAST, after all other tools.",
		schema,
		func(ctx context.Context, args map[string]interface{}) (*models.CallToolResult, error) {
			days := intArg(args, "days", 3)
			if days > 5 {
				days = 5
			}
			itinerary := make([]map[string]any, 0, days)
			for day := 1; day <= days; day++ {
				first := d.intn(len(activities))
				second := d.intn(len(activities) - 1)
				if second >= first {
					second++
				}
				itinerary = append(itinerary, map[string]any{
					fmt.Sprintf("Day %d", day): []string{activities[first], activities[second]},
				})
			}
			return textResult(map[string]any{
				"destination": stringArg(args, "destination", "unknown"),
				"duration":    fmt.Sprintf("%d days", intArg(args, "days", 3)),
				"itinerary":   itinerary,
			})
		})
}
