package dataset

import (
	"fmt"
	"math/rand"
)

// Split shuffles the dataset and splits it into a train and a holdout part.
// ratio is the fraction of samples that ends up in the train part.
// Both sides keep at least one sample.
func Split(d Dataset, ratio float64, seed int64) (Dataset, Dataset, error) {
	n := d.Len()
	if n < 2 {
		return Dataset{}, Dataset{}, fmt.Errorf("not enough samples to split : %d", n)
	}
	if ratio <= 0 || ratio >= 1 {
		return Dataset{}, Dataset{}, fmt.Errorf("invalid split ratio : %f", ratio)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	cut := int(float64(n) * ratio)
	if cut == 0 {
		cut = 1
	}
	if cut == n {
		cut = n - 1
	}

	return d.Select(perm[:cut]), d.Select(perm[cut:]), nil
}

// Folds returns k validation index folds for a dataset of n samples.
// The folds partition [0,n) : every row lands in exactly one fold.
func Folds(n, k int, seed int64) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds : %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("more folds than samples [ %d | %d ]", k, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	folds := make([][]int, k)
	for i, j := range perm {
		f := i % k
		folds[f] = append(folds[f], j)
	}
	return folds, nil
}

// TrainFold returns the training indices complementing the given validation fold.
func TrainFold(folds [][]int, fold int) []int {
	idx := make([]int, 0)
	for f, ff := range folds {
		if f == fold {
			continue
		}
		idx = append(idx, ff...)
	}
	return idx
}
