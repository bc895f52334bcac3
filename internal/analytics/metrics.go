package analytics

// MonthlyWorkHours is the nominal full-time month used to relate a monthly
// salary to an hourly output rate.
const MonthlyWorkHours = 160

// PointsPerHour estimates hourly output. The primary estimate scales the mean
// points of a completed task by how many mean-duration tasks fit in an hour.
// When mean duration is unusable it falls back to total points over total
// hours, and to zero when there is no usable data at all. The branch order is
// part of the contract; reports produced on either path must stay comparable
// over time.
func PointsPerHour(totalPoints, completed int, avgDurationMin, totalHours float64) float64 {
	if completed > 0 && avgDurationMin > 0 {
		meanPoints := float64(totalPoints) / float64(completed)
		return meanPoints * (60.0 / avgDurationMin)
	}
	if totalHours > 0 {
		return float64(totalPoints) / totalHours
	}
	return 0
}

// SalaryPerPoint is the monthly salary spread over a nominal month of output
// at the employee's measured rate. Zero when the rate is unknown.
func SalaryPerPoint(salary, pointsPerHour float64) float64 {
	if pointsPerHour <= 0 {
		return 0
	}
	return salary / (pointsPerHour * MonthlyWorkHours)
}
