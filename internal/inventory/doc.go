// Package inventory reads knapsack inventories from the plain text format
// (capacity on the first line, then "name size price" rows) and from YAML.
package inventory
