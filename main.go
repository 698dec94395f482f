package main

import "wireguard-subnets/cmd"

func main() {
	cmd.Execute()
}
