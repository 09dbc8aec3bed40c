// This file is part of OneFPGA.
//
// OneFPGA is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// OneFPGA is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with OneFPGA.  If not, see <https://www.gnu.org/licenses/>.

// Package config reads the MiSTer.ini configuration file.
//
// The file has a base section, named [MiSTer], and any number of override
// sections. An override section is named after a core or after a video
// resolution:
//
//	[MiSTer]
//	video_mode=8
//
//	[SNES + Genesis]
//	direct_video=1
//
//	[video=1920x1080@60]
//	vsync_adjust=2
//
// Merged() combines the base section with the overrides that apply to a core
// running at a resolution. Core overrides win over resolution overrides. A key
// that is absent from an override section never changes the merged value.
//
// Keys that appear before the first section are part of the base section.
package config
