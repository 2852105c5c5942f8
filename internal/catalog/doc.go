// Package catalog loads the display catalog (werbies.json) that maps listing ids to the
// name, images and color shown in sale announcements, plus the mergeable listing groups.
//
// The file is a JSON object keyed by listing id:
//
//	{
//	  "1083712348": {"name": "Annette", "images": ["https://..."], "color": "#ff66aa"},
//	  "netteflix":  {"name": "NETTEFLIX!!", "images": ["https://..."], "members": ["1083712348", "1002448926"]}
//	}
//
// An entry with members is a group: when every member sells in the same pass the member
// sales are announced as one sale of the group.
package catalog
