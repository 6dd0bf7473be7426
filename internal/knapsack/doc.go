// Package knapsack solves the 0/1 knapsack problem for items whose sizes and
// prices are exact decimals. DeriveStep reduces item sizes to a common
// quantization unit and Solve tabulates the best subset over the capacity
// slots that unit produces. Both are pure functions: they never log and never
// retain state between calls.
package knapsack
