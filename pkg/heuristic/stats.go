package heuristic

// average computes the truncated integer mean, 0 for no values
func average(values []int64) int64 {
	if len(values) == 0 {
		return 0
	}

	var sum int64
	for _, v := range values {
		sum += v
	}
	return sum / int64(len(values))
}

// ratio divides gc by cpu, treating zero CPU time as no GC pressure
func ratio(gcMs, cpuMs int64) float64 {
	if cpuMs == 0 {
		return 0
	}
	return float64(gcMs) / float64(cpuMs)
}
