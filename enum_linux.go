package camgrab

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kevmo314/camgrab/pkg/logger"
)

// listVideoNodes returns the capture nodes under <sysfs>/class/video4linux in
// numeric order. UVC cameras register a second node for frame metadata; only
// the node with stream index 0 is kept.
func listVideoNodes(sysfs string) ([]DeviceInfo, []string, error) {
	classDir := filepath.Join(sysfs, "class", "video4linux")
	entries, err := os.ReadDir(classDir)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	type node struct {
		n    int
		name string
	}
	var nodes []node
	for _, e := range entries {
		num, ok := strings.CutPrefix(e.Name(), "video")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		if idx := readSysfs(filepath.Join(classDir, e.Name(), "index")); idx != "" && idx != "0" {
			continue
		}
		nodes = append(nodes, node{n: n, name: e.Name()})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].n < nodes[j].n })

	infos := make([]DeviceInfo, len(nodes))
	dirs := make([]string, len(nodes))
	for i, nd := range nodes {
		dirs[i] = filepath.Join(classDir, nd.name)
		infos[i] = DeviceInfo{
			Name: readSysfs(filepath.Join(dirs[i], "name")),
			Path: "/dev/" + nd.name,
		}
	}
	return infos, dirs, nil
}

// readSysfs returns the trimmed contents of a sysfs attribute, or "" when it
// cannot be read.
func readSysfs(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(bytes.TrimSpace(data))
}

// parseALSAPCM parses /proc/asound/pcm and returns the devices that have a
// capture stream. Lines look like
//
//	00-00: ALC257 Analog : ALC257 Analog : playback 1 : capture 1
//
// Lines that cannot be parsed are skipped. A capture device with an
// unreadable id is kept with an empty path.
func parseALSAPCM(data []byte, log *logger.Logger) ([]DeviceInfo, error) {
	var infos []DeviceInfo
	s := bufio.NewScanner(bytes.NewReader(data))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			log.Debug("skipping malformed pcm line", "line", line)
			continue
		}
		capture := false
		for _, f := range fields[3:] {
			if strings.HasPrefix(strings.TrimSpace(f), "capture") {
				capture = true
			}
		}
		if !capture {
			continue
		}
		info := DeviceInfo{Name: strings.TrimSpace(fields[1])}
		if c, d, ok := parsePCMID(fields[0]); ok {
			info.Path = fmt.Sprintf("hw:%d,%d", c, d)
		} else {
			log.Debug("malformed pcm id", "id", fields[0])
		}
		infos = append(infos, info)
	}
	return infos, s.Err()
}

func parsePCMID(id string) (card, dev int, ok bool) {
	c, d, ok := strings.Cut(strings.TrimSpace(id), "-")
	if !ok {
		return 0, 0, false
	}
	card, err1 := strconv.Atoi(c)
	dev, err2 := strconv.Atoi(d)
	return card, dev, err1 == nil && err2 == nil
}
