// Package score implements a linear scoring model: a prediction is the
// table intercept plus the sum of each declared coefficient multiplied by
// the matching feature value. It exposes [Table], [Record], [Category] and
// the typed errors returned when a record or table does not line up.
package score
