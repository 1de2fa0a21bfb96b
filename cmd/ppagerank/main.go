// Command ppagerank computes PageRank over a distributed sparse matrix loaded
// from a binary sparse-matrix file, running the group as in-process ranks.
package main

import "os"

func main() {
	os.Exit(Execute())
}
