// Command vktri opens a window and draws a triangle with Vulkan until the
// window is closed.
package main

import (
	"log/slog"
	"os"

	vk "github.com/vulkan-go/vulkan"

	"vktri/src/alert"
	"vktri/src/assets"
	"vktri/src/config"
	"vktri/src/render"
	"vktri/src/window"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		return 1
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(log)
	alert.Logger = log

	shaders, err := assets.LoadShaders(os.DirFS(cfg.ShaderDir), cfg.VertexShader, cfg.FragmentShader)
	if err != nil {
		log.Error("load shaders", "dir", cfg.ShaderDir, "err", err)
		return 1
	}

	s, err := start(cfg, shaders, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		return 1
	}
	defer s.close()

	s.win.Show()
	app := render.NewApp(s.ctx, log)
	code := app.Run(s.win)
	log.Info("exiting", "code", code, "dropped", app.Dropped())
	return code
}

// session is everything that lives as long as the window is open.
type session struct {
	win *window.Window
	drv *render.VulkanDriver
	ctx render.Context
}

// start opens the window, the Vulkan instance and the renderer in that
// order. A failing step tears down the steps before it.
func start(cfg config.Config, shaders render.ShaderCode, log *slog.Logger) (_ *session, err error) {
	defer render.CheckError(&err)

	s := &session{}
	s.win, err = window.New(cfg.Title, cfg.Width, cfg.Height, log)
	render.OrPanic(err)

	s.drv, err = render.NewVulkanDriver(render.VulkanConfig{
		AppName:    cfg.Title,
		ProcAddr:   window.ProcAddr(),
		Extensions: s.win.RequiredExtensions(),
		Validation: cfg.Debug,
		OnMessage: func(layer, message string) {
			alert.Show("Validation: "+layer, message)
		},
		Logger: log,
	})
	render.OrPanic(err, s.win.Destroy)

	s.ctx, err = render.NewContext(render.Options{
		Driver:     s.drv,
		NewSurface: s.drv.CreateSurface(s.win.CreateSurface),
		Shaders:    shaders,
		Extent:     vk.Extent2D{Width: uint32(cfg.Width), Height: uint32(cfg.Height)},
		ClearColor: cfg.ClearColor,
		Logger:     log,
	})
	render.OrPanic(err, s.drv.Close, s.win.Destroy)
	return s, nil
}

func (s *session) close() {
	s.ctx.Destroy()
	s.drv.Close()
	s.win.Destroy()
}
