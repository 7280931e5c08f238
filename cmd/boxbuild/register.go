package main

import (
	"github.com/boxbuild/boxbuild/internal/config"
	"github.com/boxbuild/boxbuild/internal/plugin"
	checkoutplugin "github.com/boxbuild/boxbuild/internal/plugins/checkout"
	pipinstallplugin "github.com/boxbuild/boxbuild/internal/plugins/pipinstall"
	scriptplugin "github.com/boxbuild/boxbuild/internal/plugins/script"
	virtualenvplugin "github.com/boxbuild/boxbuild/internal/plugins/virtualenv"
)

// RegisterPlugins wires every step kind the loader recognizes.
func RegisterPlugins(registry *plugin.Registry) error {
	if err := registry.Register(config.KindVirtualenv, virtualenvplugin.New()); err != nil {
		return err
	}
	if err := registry.Register(config.KindPipInstall, pipinstallplugin.New()); err != nil {
		return err
	}
	if err := registry.Register(config.KindScript, scriptplugin.New()); err != nil {
		return err
	}
	if err := registry.Register(config.KindCheckout, checkoutplugin.New()); err != nil {
		return err
	}
	return nil
}
