package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/urfave/cli"
)

// List the cpus that tracers can be attached to.
func ListDevices(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	infoList, err := cpu.Info()
	if err != nil {
		return fmt.Errorf("list-devices: could not query cpu info: %w", err)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"CPU", "Model", "Cores", "Speed (MHz)"})
	for _, info := range infoList {
		table.Append([]string{
			fmt.Sprintf("%d", info.CPU),
			info.ModelName,
			fmt.Sprintf("%d", info.Cores),
			fmt.Sprintf("%.0f", info.Mhz),
		})
	}
	table.SetFooter([]string{"", "", "TRACERS", fmt.Sprintf("%d", defaultWorkers())})
	table.Render()

	logger.Noticef("available devices\n%s", buf.String())
	return nil
}
