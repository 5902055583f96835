// Package config handles renderer configuration loading and management.
package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Config holds all renderer settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Render     RenderConfig     `yaml:"render"`
	Camera     CameraConfig     `yaml:"camera"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"` // 0 = uncapped
	Editor     bool `yaml:"editor"`    // start with the ImGui editor host
}

// RenderConfig holds the scene and tracer settings.
type RenderConfig struct {
	Scene     string   `yaml:"scene"` // variant name or 1-based number
	MeshPath  string   `yaml:"mesh_path"`
	MeshScale float32  `yaml:"mesh_scale"`
	AssetDirs []string `yaml:"asset_dirs"`
	ShaderDir string   `yaml:"shader_dir"` // empty = embedded shaders, no hot reload

	RaysPerPixel int32 `yaml:"rays_per_pixel"`
	RayBounces   int32 `yaml:"ray_bounces"`

	GroundColor     mgl32.Vec3 `yaml:"ground_color"`
	SkyHorizonColor mgl32.Vec3 `yaml:"sky_horizon_color"`
	SkyZenithColor  mgl32.Vec3 `yaml:"sky_zenith_color"`
	SunFocus        float32    `yaml:"sun_focus"`
	SunIntensity    float32    `yaml:"sun_intensity"`

	Lens LensConfig `yaml:"lens"`
}

// LensConfig holds the ray jitter settings.
type LensConfig struct {
	Diverge       float32 `yaml:"diverge"`
	Defocus       float32 `yaml:"defocus"`
	FocusDistance float32 `yaml:"focus_distance"`
}

// CameraConfig holds the initial scene camera pose and projection.
type CameraConfig struct {
	Position mgl32.Vec3 `yaml:"position"`
	Yaw      float32    `yaml:"yaw"`   // degrees, 0 looks down -Z
	Pitch    float32    `yaml:"pitch"` // degrees
	FOV      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Speed    float32    `yaml:"speed"`
}

// ScreenshotConfig holds screenshot output settings.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // png or bmp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      false,
			FPSLimit:   90,
			Editor:     false,
		},
		Render: RenderConfig{
			Scene:           "sphere-ring",
			MeshPath:        "models/icosahedron.obj",
			MeshScale:       1,
			RaysPerPixel:    1,
			RayBounces:      3,
			GroundColor:     mgl32.Vec3{0.35, 0.3, 0.35},
			SkyHorizonColor: mgl32.Vec3{1, 1, 1},
			SkyZenithColor:  mgl32.Vec3{0.08, 0.37, 0.73},
			SunFocus:        500,
			SunIntensity:    10,
			Lens: LensConfig{
				Diverge:       0.3,
				Defocus:       0,
				FocusDistance: 10,
			},
		},
		Camera: CameraConfig{
			Position: mgl32.Vec3{0, 0, 1},
			FOV:      100,
			Near:     0.1,
			Far:      100,
			Speed:    5,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the renderer cannot start with.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height)
	case c.Graphics.FPSLimit < 0:
		return fmt.Errorf("graphics: fps_limit must not be negative, got %d", c.Graphics.FPSLimit)
	case c.Render.MeshScale <= 0:
		return fmt.Errorf("render: mesh_scale must be positive, got %g", c.Render.MeshScale)
	case c.Render.RaysPerPixel < 1:
		return fmt.Errorf("render: rays_per_pixel must be at least 1, got %d", c.Render.RaysPerPixel)
	case c.Render.RayBounces < 0:
		return fmt.Errorf("render: ray_bounces must not be negative, got %d", c.Render.RayBounces)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("camera: fov must be in (0, 180), got %g", c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("camera: need 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far)
	case c.Screenshot.Format != "png" && c.Screenshot.Format != "bmp":
		return fmt.Errorf("screenshot: unknown format %q", c.Screenshot.Format)
	}
	return nil
}
