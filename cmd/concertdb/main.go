package main

import "github.com/theakshaypant/concertdb/cmd/concertdb/cmd"

func main() {
	cmd.Execute()
}
