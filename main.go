package main

import "bookborrow/app/cli"

func main() {
	cli.Execute()
}
