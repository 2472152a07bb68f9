package recommender

func ptr(v float64) *float64 { return &v }

// FallbackBeans is used when the live menu is empty or unreachable:
// six origins at three roast levels.
func FallbackBeans() []Bean {
	return []Bean{
		{ID: "fallback-brazil-light", Name: "Brazil Santos Light", Roast: "Light", Acidity: ptr(3), Bitterness: ptr(1), Notes: "nutty, milk chocolate"},
		{ID: "fallback-brazil-medium", Name: "Brazil Santos Medium", Roast: "Medium", Acidity: ptr(2), Bitterness: ptr(2), Notes: "nutty, cocoa"},
		{ID: "fallback-brazil-dark", Name: "Brazil Santos Dark", Roast: "Dark", Acidity: ptr(1), Bitterness: ptr(4), Notes: "dark chocolate"},
		{ID: "fallback-ethiopia-light", Name: "Ethiopia Yirgacheffe Light", Roast: "Light", Acidity: ptr(4), Bitterness: ptr(1), Notes: "citrus, floral"},
		{ID: "fallback-ethiopia-medium", Name: "Ethiopia Yirgacheffe Medium", Roast: "Medium", Acidity: ptr(3), Bitterness: ptr(2), Notes: "citrus, tea-like"},
		{ID: "fallback-ethiopia-dark", Name: "Ethiopia Yirgacheffe Dark", Roast: "Dark", Acidity: ptr(2), Bitterness: ptr(3), Notes: "spice, cocoa"},
		{ID: "fallback-rwanda-light", Name: "Rwanda Natural Light", Roast: "Light", Acidity: ptr(4), Bitterness: ptr(1), Notes: "berry, floral"},
		{ID: "fallback-rwanda-medium", Name: "Rwanda Natural Medium", Roast: "Medium", Acidity: ptr(3), Bitterness: ptr(2), Notes: "berry, caramel"},
		{ID: "fallback-rwanda-dark", Name: "Rwanda Natural Dark", Roast: "Dark", Acidity: ptr(2), Bitterness: ptr(3), Notes: "dark fruit, cocoa"},
		{ID: "fallback-colombia-light", Name: "Colombia Supremo Light", Roast: "Light", Acidity: ptr(3), Bitterness: ptr(1), Notes: "red fruit, caramel"},
		{ID: "fallback-colombia-medium", Name: "Colombia Supremo Medium", Roast: "Medium", Acidity: ptr(2.5), Bitterness: ptr(2), Notes: "caramel, chocolate"},
		{ID: "fallback-colombia-dark", Name: "Colombia Supremo Dark", Roast: "Dark", Acidity: ptr(1.5), Bitterness: ptr(3.5), Notes: "bitter chocolate"},
		{ID: "fallback-guatemala-light", Name: "Guatemala Antigua Light", Roast: "Light", Acidity: ptr(3.5), Bitterness: ptr(1.5), Notes: "citrus, honey"},
		{ID: "fallback-guatemala-medium", Name: "Guatemala Antigua Medium", Roast: "Medium", Acidity: ptr(2.5), Bitterness: ptr(2.5), Notes: "chocolate, nutty"},
		{ID: "fallback-guatemala-dark", Name: "Guatemala Antigua Dark", Roast: "Dark", Acidity: ptr(1.5), Bitterness: ptr(3.5), Notes: "smoky, cocoa"},
		{ID: "fallback-sumatra-light", Name: "Sumatra Mandheling Light", Roast: "Light", Acidity: ptr(2.5), Bitterness: ptr(2), Notes: "herbal, spice"},
		{ID: "fallback-sumatra-medium", Name: "Sumatra Mandheling Medium", Roast: "Medium", Acidity: ptr(2), Bitterness: ptr(3), Notes: "earthy, spice"},
		{ID: "fallback-sumatra-dark", Name: "Sumatra Mandheling Dark", Roast: "Dark", Acidity: ptr(1), Bitterness: ptr(4), Notes: "earthy, dark cocoa"},
	}
}
