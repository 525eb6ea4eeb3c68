package main

import (
	"context"
	"flag"
	"log"

	"terraform-provider-cloudram/internal/provider"
	"terraform-provider-cloudram/internal/version"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"
)

func main() {
	var debug bool

	flag.BoolVar(&debug, "debug", false, "set to true to run the provider with support for debuggers like delve")
	flag.Parse()

	opts := providerserver.ServeOpts{
		Address: "registry.terraform.io/cloudram/cloudram",
		Debug:   debug,
	}

	err := providerserver.Serve(context.Background(), provider.New(version.Version), opts)
	if err != nil {
		log.Fatal(err.Error())
	}
}
