package cfg

import (
	"os"
	"strconv"
	"time"
)

// TSPMaxElements is the largest element count the exact TSP strategy will
// hand to the solver. The model has O(n²) binary variables, so anything
// above a handful of elements is ordered by the nearest-neighbour heuristic
// instead.
var TSPMaxElements = 6

// TSPTimeout bounds a single TSP solve. Expiry counts as solver failure.
var TSPTimeout = 20 * time.Second

// SolverMaxNodes caps the branch and bound tree.
var SolverMaxNodes = 20000

// SolverMaxPivots caps the simplex iterations of one LP relaxation.
var SolverMaxPivots = 200000

// SolverMaxCutRounds caps how often one branch and bound node is re-solved
// after adding cutting planes.
var SolverMaxCutRounds = 100

var SolverTolerance = 1e-9

// IntegralityTolerance is how far from an integer a value may be and still
// count as integral.
var IntegralityTolerance = 1e-6

// GCodePrecision is the number of decimals written for coordinates.
var GCodePrecision = 3

// Load overrides the defaults above from the environment.
func Load() {
	TSPMaxElements = getEnvAsInt("LASERCUT_TSP_MAX_ELEMENTS", TSPMaxElements)
	TSPTimeout = getEnvAsDuration("LASERCUT_TSP_TIMEOUT", TSPTimeout)
	SolverMaxNodes = getEnvAsInt("LASERCUT_SOLVER_MAX_NODES", SolverMaxNodes)
	GCodePrecision = getEnvAsInt("LASERCUT_GCODE_PRECISION", GCodePrecision)
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
