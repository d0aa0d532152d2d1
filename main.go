package main

import "github.com/frahmantamala/factoryshift/cmd"

func main() {
	cmd.Execute()
}
