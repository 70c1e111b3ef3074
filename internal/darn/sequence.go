package darn

// complement maps each base to its complement. Case is preserved for
// the four bases and N; anything else becomes 'N'.
var complement [256]byte

func init() {
	complement['A'] = 'T'
	complement['T'] = 'A'
	complement['C'] = 'G'
	complement['G'] = 'C'
	complement['N'] = 'N'
	complement['a'] = 't'
	complement['t'] = 'a'
	complement['c'] = 'g'
	complement['g'] = 'c'
	complement['n'] = 'n'
}

// RevComp returns the reverse complement of seq.
func RevComp(seq string) string {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return string(out)
}
