package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/achilleasa/cpupath/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Description"})
	for _, name := range scene.BuiltinNames() {
		table.Append([]string{name, scene.BuiltinDescription(name)})
	}
	table.Render()

	logger.Noticef("built-in scenes\n%s", buf.String())
	return nil
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	if ctx.NArg() != 1 {
		return errors.New("missing scene name or scene file argument")
	}

	sc, err := loadScene(ctx.Args().First(), ctx.Float64("aspect"), 0, ctx.Int64("seed"))
	if err != nil {
		return err
	}

	sc.BuildBvh(bvhLeafItems)
	logger.Noticef("scene information\n%s", formatSceneStats(sc))
	return nil
}

// Render scene statistics as a table.
func formatSceneStats(sc *scene.Scene) string {
	stats := sc.Stats()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Surfaces", fmt.Sprintf("%d", stats.Surfaces)})
	for _, matType := range []scene.MaterialType{scene.DiffuseMaterial, scene.ReflectiveMaterial, scene.DielectricMaterial} {
		table.Append([]string{fmt.Sprintf("%s materials", matType), fmt.Sprintf("%d", stats.Materials[matType])})
	}
	table.Append([]string{"Inverted shells", fmt.Sprintf("%d", stats.InvertedShells)})
	if stats.BvhNodes != 0 {
		table.Append([]string{"Bvh nodes", fmt.Sprintf("%d", stats.BvhNodes)})
	}
	if sc.Camera != nil {
		table.Append([]string{"Camera", sc.Camera.String()})
	}
	table.Render()

	return buf.String()
}
