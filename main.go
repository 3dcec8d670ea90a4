package main

import "github.com/0xBoji/realty-payments/cmd"

func main() {
	cmd.Execute()
}
