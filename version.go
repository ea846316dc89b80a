package wayfarer

// Version is the library version. Overridable at build time:
//
//	go build -ldflags "-X github.com/wayfarerhq/wayfarer.Version=v1.2.3"
var Version = "0.3.0"
