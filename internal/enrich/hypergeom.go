package enrich

import "math"

// hypergeomLogPMF returns the log probability of drawing k successes in a
// sample of n from a population of size N containing K successes.
func hypergeomLogPMF(k, n, K, N int) float64 {
	if k < 0 || k > n || k > K || n-k > N-K {
		return math.Inf(-1)
	}
	return logChoose(K, k) + logChoose(N-K, n-k) - logChoose(N, n)
}

// hypergeomQuantile returns the smallest k whose CDF reaches p.
func hypergeomQuantile(p float64, n, K, N int) int {
	lo := n + K - N
	if lo < 0 {
		lo = 0
	}
	hi := n
	if K < hi {
		hi = K
	}

	var cdf float64
	for k := lo; k <= hi; k++ {
		cdf += math.Exp(hypergeomLogPMF(k, n, K, N))
		if cdf >= p {
			return k
		}
	}
	return hi
}

func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	ln1, _ := math.Lgamma(float64(n + 1))
	lk1, _ := math.Lgamma(float64(k + 1))
	lnk1, _ := math.Lgamma(float64(n - k + 1))
	return ln1 - lk1 - lnk1
}
