package domain

// Distribution is the return-generating process family.
type Distribution string

// Distribution constants
const (
	DistributionNormal          Distribution = "normal"
	DistributionStudentT        Distribution = "student_t"
	DistributionLogNormal       Distribution = "lognormal"
	DistributionJumpDiffusion   Distribution = "jump_diffusion"
	DistributionRegimeSwitching Distribution = "regime_switching"
	DistributionGARCH           Distribution = "garch"
)

// Distributions lists every supported family.
var Distributions = []Distribution{
	DistributionNormal,
	DistributionStudentT,
	DistributionLogNormal,
	DistributionJumpDiffusion,
	DistributionRegimeSwitching,
	DistributionGARCH,
}

// Valid reports whether d is a known family.
func (d Distribution) Valid() bool {
	for _, known := range Distributions {
		if d == known {
			return true
		}
	}
	return false
}
