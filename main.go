package main

import "github.com/Mohsinsiddi/bnbpanel/cmd"

func main() {
	cmd.Execute()
}
