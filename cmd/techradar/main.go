package main

import (
	"oss.terrastruct.com/techradar/lib/xmain"
	"oss.terrastruct.com/techradar/radarcli"
)

func main() {
	xmain.Main(radarcli.Run)
}
