package main

import "github.com/maastricht-university/call-auditor/cli"

func main() {
	cli.Execute()
}
