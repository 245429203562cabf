package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/lumenray/lumen/pkg/scene"
)

// ListScenes prints the built-in scenes with their entity counts
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Scene", "Entities", "Camera FOV"})
	for _, name := range scene.Names() {
		sc, err := scene.ByName(name)
		if err != nil {
			return err
		}
		table.Append([]string{
			name,
			strconv.Itoa(len(sc.Entities)),
			fmt.Sprintf("%g", sc.Camera.VFov),
		})
	}
	table.Render()
	return nil
}
