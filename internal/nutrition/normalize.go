// internal/nutrition/normalize.go
package nutrition

import (
	"fmt"

	"nutrition-log/internal/models"
)

// defaultServingGrams is the base used when the provider omits the serving weight.
const defaultServingGrams = 100.0

// Normalize converts a provider food into a per-100g profile. Every macro is
// divided by the same serving weight so calories and grams stay consistent.
func Normalize(food Food) (models.NutrientProfile, error) {
	base := defaultServingGrams
	if food.ServingWeightGrams != nil && *food.ServingWeightGrams > 0 {
		base = *food.ServingWeightGrams
	}

	if food.Calories == nil {
		return models.NutrientProfile{}, fmt.Errorf("%w: missing nf_calories for %q", models.ErrProviderError, food.FoodName)
	}

	var err error
	profile := models.NutrientProfile{FoodName: food.FoodName}
	if profile.CaloriesPer100g, err = per100g("nf_calories", food.Calories, base); err != nil {
		return models.NutrientProfile{}, err
	}
	if profile.ProteinPer100g, err = per100g("nf_protein", food.Protein, base); err != nil {
		return models.NutrientProfile{}, err
	}
	if profile.FatPer100g, err = per100g("nf_total_fat", food.TotalFat, base); err != nil {
		return models.NutrientProfile{}, err
	}
	if profile.CarbsPer100g, err = per100g("nf_total_carbohydrate", food.TotalCarbohydrate, base); err != nil {
		return models.NutrientProfile{}, err
	}
	return profile, nil
}

// per100g treats a missing field as zero. Calories are checked by the caller.
func per100g(field string, value *float64, base float64) (float64, error) {
	if value == nil {
		return 0, nil
	}
	if *value < 0 {
		return 0, fmt.Errorf("%w: negative %s in response", models.ErrProviderError, field)
	}
	return *value / base * 100, nil
}

// Scale returns the nutrients of a grams-sized serving of profile.
func Scale(profile models.NutrientProfile, grams int) models.Nutrients {
	factor := float64(grams) / 100
	return models.Nutrients{
		Calories: profile.CaloriesPer100g * factor,
		Protein:  profile.ProteinPer100g * factor,
		Fat:      profile.FatPer100g * factor,
		Carbs:    profile.CarbsPer100g * factor,
	}
}
