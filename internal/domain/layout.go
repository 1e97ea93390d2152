package domain

type Layout string

const (
	LayoutDynamic   Layout = "Dynamic"
	LayoutOnePlus7  Layout = "OnePlus7"
	LayoutTwoPlus21 Layout = "TwoPlus21"
)

const (
	twoPlus21Threshold = 10
	onePlus7Threshold  = 6
)

// GetRecommendedLayout picks the tiling layout from the number of
// participants and endpoints in the conference.
func (c *Conference) GetRecommendedLayout() Layout {
	return RecommendedLayout(len(c.Participants) + len(c.Endpoints))
}

func RecommendedLayout(count int) Layout {
	switch {
	case count >= twoPlus21Threshold:
		return LayoutTwoPlus21
	case count >= onePlus7Threshold:
		return LayoutOnePlus7
	default:
		return LayoutDynamic
	}
}
