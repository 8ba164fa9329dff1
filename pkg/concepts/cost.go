package concepts

// Dollar rates per 1000 characters.
const (
	InputCostPer1K  = 0.000125
	OutputCostPer1K = 0.000375
)

// GroupCost is the estimated price of one model call.
type GroupCost struct {
	InputChars  int
	OutputChars int
	InputCost   float64
	OutputCost  float64
}

func EstimateCost(inputChars, outputChars int) GroupCost {
	return GroupCost{
		InputChars:  inputChars,
		OutputChars: outputChars,
		InputCost:   float64(inputChars) / 1000 * InputCostPer1K,
		OutputCost:  float64(outputChars) / 1000 * OutputCostPer1K,
	}
}

func (c GroupCost) Total() float64 {
	return c.InputCost + c.OutputCost
}

// Add accumulates other into c.
func (c *GroupCost) Add(other GroupCost) {
	c.InputChars += other.InputChars
	c.OutputChars += other.OutputChars
	c.InputCost += other.InputCost
	c.OutputCost += other.OutputCost
}
